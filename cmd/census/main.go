// -----------------------------------------------------------------------
// census - consolidates the Jenkins job estate into a modularity report
// -----------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/census/internal/classifier"
	"github.com/ternarybob/census/internal/common"
	"github.com/ternarybob/census/internal/consolidator"
	"github.com/ternarybob/census/internal/export"
	"github.com/ternarybob/census/internal/interfaces"
	"github.com/ternarybob/census/internal/jenkins"
	"github.com/ternarybob/census/internal/scm"
	badgerstore "github.com/ternarybob/census/internal/storage/badger"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	outputPath   = flag.String("out", "", "CSV output path (overrides config)")
	schedule     = flag.String("schedule", "", "Cron expression for recurring runs (overrides config)")
	workers      = flag.Int("workers", 0, "Enrichment worker count (overrides config)")
	historyLimit = flag.Int("history", 0, "Print the N most recent run summaries and exit")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Census version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("census.toml"); err == nil {
			configFiles = append(configFiles, "census.toml")
		} else if _, err := os.Stat("deployments/local/census.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/census.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, *outputPath, *schedule, *workers)

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetFullVersion())

	if err := config.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Configuration validation failed")
		os.Exit(1)
	}

	db, err := badgerstore.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open storage")
		os.Exit(1)
	}
	defer db.Close()

	runStorage := badgerstore.NewRunStorage(db, logger)

	if *historyLimit > 0 {
		if err := printHistory(runStorage, *historyLimit); err != nil {
			logger.Fatal().Err(err).Msg("Failed to list run history")
			os.Exit(1)
		}
		return
	}

	cons, err := buildConsolidator(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize collaborators")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Schedule.Enabled {
		runScheduled(ctx, cons, runStorage)
		return
	}

	if err := runOnce(ctx, cons, runStorage); err != nil {
		logger.Fatal().Err(err).Msg("Consolidation run failed")
		os.Exit(1)
	}
}

// buildConsolidator wires the Jenkins client, source-control fetchers and
// classifier from the resolved configuration.
func buildConsolidator(db *badgerstore.BadgerDB) (*consolidator.Consolidator, error) {
	jenkinsOpts := []jenkins.ClientOption{
		jenkins.WithLogger(logger),
		jenkins.WithRateLimit(config.Jenkins.RateLimit),
		jenkins.WithTimeout(config.JenkinsTimeout()),
	}
	if !config.Jenkins.VerifyTLS {
		jenkinsOpts = append(jenkinsOpts, jenkins.WithInsecureTLS())
	}
	ci := jenkins.NewClient(config.Jenkins.URL, config.Jenkins.Username, config.Jenkins.APIToken, jenkinsOpts...)
	if err := ci.FetchCrumb(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("Crumb fetch failed, continuing without CSRF crumb")
	}

	var gitlabFetcher, githubFetcher interfaces.FileFetcher
	if config.SCM.GitLab.BaseURL != "" {
		fetcher, err := scm.NewGitLabFetcher(config.SCM.GitLab.BaseURL, config.SCM.GitLab.Token, logger)
		if err != nil {
			return nil, err
		}
		gitlabFetcher = fetcher
	}
	if config.SCM.GitHub.Token != "" || config.SCM.GitHub.BaseURL != "" {
		fetcher, err := scm.NewGitHubFetcher(config.SCM.GitHub.BaseURL, config.SCM.GitHub.Token, logger)
		if err != nil {
			return nil, err
		}
		githubFetcher = fetcher
	}

	if config.Cache.Enabled {
		cache := badgerstore.NewSourceCache(db, config.CacheTTL(), logger)
		if gitlabFetcher != nil {
			gitlabFetcher = scm.NewCachedFetcher(gitlabFetcher, cache, logger)
		}
		if githubFetcher != nil {
			githubFetcher = scm.NewCachedFetcher(githubFetcher, cache, logger)
		}
	}

	router := scm.NewRouter(gitlabFetcher, githubFetcher, config.SCM.GitHub.Hosts)

	return consolidator.New(consolidator.Options{
		CIServer:        ci,
		Fetchers:        router,
		Classifier:      classifier.New(classifier.Policy(config.Classifier.Policy)),
		Logger:          logger,
		Workers:         config.Workers.Count,
		StalenessDays:   config.Activity.StalenessDays,
		DefaultBranches: config.SCM.DefaultBranches,
	}), nil
}

// runOnce executes a single consolidation pass and writes the report.
func runOnce(ctx context.Context, cons *consolidator.Consolidator, runStorage interfaces.RunStorage) error {
	records, summary, err := cons.Run(ctx, config.RootPath())
	if err != nil {
		return err
	}

	writer := export.NewCSVWriter(logger)
	if err := writer.WriteFile(config.Export.Path, records); err != nil {
		return err
	}
	summary.OutputPath = config.Export.Path

	if err := runStorage.SaveRunSummary(ctx, summary); err != nil {
		logger.Warn().Err(err).Msg("Failed to persist run summary")
	}
	return nil
}

// runScheduled runs consolidation on the configured cron schedule until
// interrupted.
func runScheduled(ctx context.Context, cons *consolidator.Consolidator, runStorage interfaces.RunStorage) {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(config.Schedule.Cron, func() {
		if err := runOnce(ctx, cons, runStorage); err != nil {
			logger.Error().Err(err).Msg("Scheduled run failed")
		}
	})
	if err != nil {
		logger.Fatal().Err(err).Str("cron", config.Schedule.Cron).Msg("Invalid schedule")
		os.Exit(1)
	}

	logger.Info().Str("cron", config.Schedule.Cron).Msg("Scheduler started")
	scheduler.Start()

	<-ctx.Done()
	logger.Info().Msg("Shutting down scheduler")

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("Timed out waiting for in-flight run")
	}
}

// printHistory renders recent run summaries to stdout.
func printHistory(runStorage interfaces.RunStorage, limit int) error {
	summaries, err := runStorage.ListRunSummaries(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	for _, s := range summaries {
		fmt.Printf("%s  started=%s  records=%d  modular=%d  legacy=%d  undetermined=%d  active=%d  errors=%d  out=%s\n",
			s.ID,
			s.StartedAt.Format(time.RFC3339),
			s.RecordCount,
			s.ModularCount,
			s.LegacyCount,
			s.UndeterminedCount,
			s.ActiveCount,
			s.ErrorCount,
			s.OutputPath,
		)
	}
	return nil
}
