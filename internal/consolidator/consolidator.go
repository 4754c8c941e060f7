// -----------------------------------------------------------------------
// Consolidation Aggregator - walks the job tree, enriches every leaf and
// assembles the report rows
// -----------------------------------------------------------------------

package consolidator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/census/internal/classifier"
	"github.com/ternarybob/census/internal/common"
	"github.com/ternarybob/census/internal/interfaces"
	"github.com/ternarybob/census/internal/models"
	"github.com/ternarybob/census/internal/scm"
	"github.com/ternarybob/census/internal/walker"
)

const (
	// DefaultWorkers bounds the per-job enrichment fan-out.
	DefaultWorkers = 8

	// progressEvery controls how often the run logs traversal progress.
	progressEvery = 50
)

// Options carries the consolidator's collaborators and tuning knobs.
type Options struct {
	CIServer        interfaces.CIServer
	Fetchers        interfaces.FetcherRouter
	Classifier      *classifier.Classifier
	Logger          arbor.ILogger
	Workers         int
	StalenessDays   int
	DefaultBranches []string

	// Now overrides the activity reference time. Zero means time.Now.
	Now time.Time
}

// Consolidator runs one consolidation pass over the job hierarchy.
type Consolidator struct {
	ci         interfaces.CIServer
	fetchers   interfaces.FetcherRouter
	classifier *classifier.Classifier
	logger     arbor.ILogger

	workers         int
	stalenessDays   int
	defaultBranches []string
	now             time.Time
}

// New creates a consolidator from options.
func New(opts Options) *Consolidator {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	logger := opts.Logger
	if logger == nil {
		logger = arbor.NewLogger()
	}

	cls := opts.Classifier
	if cls == nil {
		cls = classifier.New(classifier.PolicyConjunctive)
	}

	return &Consolidator{
		ci:              opts.CIServer,
		fetchers:        opts.Fetchers,
		classifier:      cls,
		logger:          logger,
		workers:         workers,
		stalenessDays:   opts.StalenessDays,
		defaultBranches: opts.DefaultBranches,
		now:             opts.Now,
	}
}

// Run walks the hierarchy under root and returns one record per discovered
// leaf, sorted by full path, plus the run summary. Per-job failures are
// captured on their records; only a failure to list the root itself aborts
// the run.
func (c *Consolidator) Run(ctx context.Context, root []string) ([]models.JobRecord, *models.RunSummary, error) {
	summary := &models.RunSummary{
		ID:        common.NewRunID(),
		StartedAt: time.Now().UTC(),
	}

	c.logger.Info().
		Str("run_id", summary.ID).
		Str("root", models.JoinPath(root)).
		Int("workers", c.workers).
		Msg("Consolidation run started")

	leaves := make(chan models.Leaf, c.workers)
	records := make(chan models.JobRecord, c.workers)

	var walkErr error
	leafCount := 0
	go func() {
		defer close(leaves)
		w := walker.New(c.ci, c.logger)
		walkErr = w.Walk(ctx, root, func(leaf models.Leaf) error {
			leafCount++
			if leafCount%progressEvery == 0 {
				c.logger.Info().Int("leaves", leafCount).Msg("Traversal progress")
			}
			select {
			case leaves <- leaf:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for leaf := range leaves {
				records <- c.enrich(ctx, leaf)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(records)
	}()

	results := make([]models.JobRecord, 0, 256)
	for rec := range records {
		results = append(results, rec)
	}

	// The leaves channel is closed, so walkErr is settled by now.
	if walkErr != nil {
		return nil, nil, fmt.Errorf("traversal failed: %w", walkErr)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].FullPath < results[j].FullPath
	})

	summary.LeafCount = leafCount
	for _, rec := range results {
		summary.Tally(rec)
	}
	summary.FinishedAt = time.Now().UTC()

	c.logger.Info().
		Str("run_id", summary.ID).
		Int("records", summary.RecordCount).
		Int("modular", summary.ModularCount).
		Int("legacy", summary.LegacyCount).
		Int("undetermined", summary.UndeterminedCount).
		Int("errors", summary.ErrorCount).
		Msg("Consolidation run finished")

	return results, summary, nil
}

// enrich assembles the record for one leaf. It always returns a record;
// failures along the way are captured in the Error field.
func (c *Consolidator) enrich(ctx context.Context, leaf models.Leaf) models.JobRecord {
	rec := models.NewJobRecord(leaf.Path, leaf.URL)

	if leaf.Err != nil {
		rec.Error = leaf.Err.Error()
		return rec
	}
	rec.PipelineType = leaf.Kind

	md, err := c.ci.GetJobMetadata(ctx, leaf.Path)
	if err != nil {
		rec.Error = fmt.Sprintf("job config: %v", err)
		return rec
	}
	if md.PipelineType != models.PipelineTypeUnknown {
		rec.PipelineType = md.PipelineType
	}
	rec.JenkinsfilePath = md.JenkinsfilePath
	rec.BranchSpecifier = md.BranchSpecifier

	source := c.resolveSource(ctx, &rec, md)

	result := c.classifier.Classify(source)
	rec.Modularity = result.Modularity
	rec.SharedLibraries = result.SharedLibraries
	rec.ModuleNames = result.ModuleNames
	rec.Degraded = result.Degraded

	lastRun, err := c.ci.GetLastBuildTimestamp(ctx, leaf.Path)
	if err != nil {
		// Activity degrades to inactive on lookup failure; the record keeps
		// its classification fields.
		c.logger.Warn().Err(err).Str("job", rec.FullPath).Msg("Last build lookup failed")
		lastRun = nil
	}
	activity := common.ResolveActivity(lastRun, c.referenceTime(), c.stalenessDays)
	rec.LastRunAt = activity.LastRunAt
	rec.IsActive = activity.IsActive

	return rec
}

// resolveSource normalizes the job's SCM URL and fetches the pipeline
// definition, trying each candidate ref in order. It returns nil, leaving
// the verdict undetermined, when the job has no SCM-backed definition or
// the file is absent on every candidate ref. Transport failures are
// recorded on the record.
func (c *Consolidator) resolveSource(ctx context.Context, rec *models.JobRecord, md *models.JobMetadata) *string {
	if md.SCMURL == "" {
		return nil
	}

	normalized, err := common.NormalizeSCMURL(md.SCMURL)
	if err != nil {
		rec.Error = fmt.Sprintf("scm url: %v", err)
		return nil
	}
	rec.SCMURL = normalized

	if md.JenkinsfilePath == "" {
		return nil
	}

	repo, err := common.ParseRepoRef(normalized)
	if err != nil {
		rec.Error = fmt.Sprintf("scm url: %v", err)
		return nil
	}

	fetcher, err := c.fetchers.ForRepo(repo)
	if err != nil {
		rec.Error = fmt.Sprintf("source fetch: %v", err)
		return nil
	}

	for _, ref := range scm.ResolveRefs(md.BranchSpecifier, c.defaultBranches) {
		content, err := fetcher.GetFileContents(ctx, repo, md.JenkinsfilePath, ref)
		if err == nil {
			return &content
		}
		if interfaces.IsNotFound(err) {
			continue
		}
		rec.Error = fmt.Sprintf("source fetch: %v", err)
		return nil
	}

	// Absent on every candidate ref: semantic absence, not a failure.
	c.logger.Debug().
		Str("job", rec.FullPath).
		Str("repo", repo.String()).
		Str("path", md.JenkinsfilePath).
		Msg("Pipeline definition not found on any candidate ref")
	return nil
}

func (c *Consolidator) referenceTime() time.Time {
	if c.now.IsZero() {
		return time.Now().UTC()
	}
	return c.now
}
