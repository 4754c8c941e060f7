package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment" yaml:"environment"` // "development" or "production"
	Jenkins     JenkinsConfig    `toml:"jenkins" yaml:"jenkins"`
	SCM         SCMConfig        `toml:"scm" yaml:"scm"`
	Classifier  ClassifierConfig `toml:"classifier" yaml:"classifier"`
	Activity    ActivityConfig   `toml:"activity" yaml:"activity"`
	Workers     WorkersConfig    `toml:"workers" yaml:"workers"`
	Cache       CacheConfig      `toml:"cache" yaml:"cache"`
	Storage     StorageConfig    `toml:"storage" yaml:"storage"`
	Export      ExportConfig     `toml:"export" yaml:"export"`
	Logging     LoggingConfig    `toml:"logging" yaml:"logging"`
	Schedule    ScheduleConfig   `toml:"schedule" yaml:"schedule"`
}

// JenkinsConfig holds the CI server connection settings
type JenkinsConfig struct {
	URL       string `toml:"url" yaml:"url" validate:"required,url"`
	Username  string `toml:"username" yaml:"username" validate:"required"`
	APIToken  string `toml:"api_token" yaml:"api_token" validate:"required"`
	VerifyTLS bool   `toml:"verify_tls" yaml:"verify_tls"`  // Internal servers often run self-signed certs
	RateLimit int    `toml:"rate_limit" yaml:"rate_limit"`  // Requests per second against the Jenkins API
	Timeout   string `toml:"timeout" yaml:"timeout"`        // e.g. "30s" - per-request HTTP timeout
	Root      string `toml:"root" yaml:"root"`              // Optional folder path to start traversal from, "/"-separated
}

// SCMConfig holds the source-control collaborator settings
type SCMConfig struct {
	GitLab          GitLabConfig `toml:"gitlab" yaml:"gitlab"`
	GitHub          GitHubConfig `toml:"github" yaml:"github"`
	DefaultBranches []string     `toml:"default_branches" yaml:"default_branches"` // Tried in order when the branch specifier is a wildcard
}

type GitLabConfig struct {
	BaseURL string `toml:"base_url" yaml:"base_url"` // e.g. "https://gitlab.example.com"
	Token   string `toml:"token" yaml:"token"`       // Private token
}

type GitHubConfig struct {
	BaseURL string   `toml:"base_url" yaml:"base_url"` // Enterprise base URL, empty for github.com
	Token   string   `toml:"token" yaml:"token"`
	Hosts   []string `toml:"hosts" yaml:"hosts"` // SCM URL hosts routed to GitHub (default: github.com)
}

// ClassifierConfig controls the modularity verdict
type ClassifierConfig struct {
	// Policy decides how the two signature families combine:
	// "conjunctive" requires a shared-library import AND a module call,
	// "any" accepts either signal on its own.
	Policy string `toml:"policy" yaml:"policy" validate:"oneof=conjunctive any"`
}

// ActivityConfig controls the active/inactive derivation
type ActivityConfig struct {
	StalenessDays int `toml:"staleness_days" yaml:"staleness_days" validate:"gt=0"` // Days since last build before a job counts as inactive
}

type WorkersConfig struct {
	Count int `toml:"count" yaml:"count" validate:"gt=0"` // Concurrent per-job enrichments
}

// CacheConfig controls the pipeline-source fetch cache
type CacheConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	TTL     string `toml:"ttl" yaml:"ttl"` // e.g. "24h"
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger" yaml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" yaml:"path"`                         // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup" yaml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type ExportConfig struct {
	Path string `toml:"path" yaml:"path"` // CSV output file path
}

type LoggingConfig struct {
	Level      string   `toml:"level" yaml:"level"`             // "debug", "info", "warn", "error"
	Output     []string `toml:"output" yaml:"output"`           // "stdout", "file"
	TimeFormat string   `toml:"time_format" yaml:"time_format"` // Time format for logs
}

// ScheduleConfig enables recurring runs instead of a single one-shot run
type ScheduleConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Cron    string `toml:"cron" yaml:"cron"` // Standard 5-field cron expression
}

// NewDefaultConfig returns the configuration defaults applied before any
// config file or environment override.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "production",
		Jenkins: JenkinsConfig{
			VerifyTLS: false,
			RateLimit: 10,
			Timeout:   "30s",
		},
		SCM: SCMConfig{
			DefaultBranches: []string{"main", "master"},
			GitHub: GitHubConfig{
				Hosts: []string{"github.com"},
			},
		},
		Classifier: ClassifierConfig{
			Policy: "conjunctive",
		},
		Activity: ActivityConfig{
			StalenessDays: 90,
		},
		Workers: WorkersConfig{
			Count: 8,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     "24h",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/census",
			},
		},
		Export: ExportConfig{
			Path: "./results.csv",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFiles loads configuration with the precedence
// defaults -> file1 -> file2 -> ... -> environment variables.
// Later files override earlier ones. Files ending in .yaml/.yml are parsed
// as YAML (the legacy config shape), everything else as TOML.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, config)
		default:
			err = toml.Unmarshal(data, config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies CENSUS_* environment variables on top of the
// file configuration.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CENSUS_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Jenkins configuration
	if url := os.Getenv("CENSUS_JENKINS_URL"); url != "" {
		config.Jenkins.URL = url
	}
	if username := os.Getenv("CENSUS_JENKINS_USERNAME"); username != "" {
		config.Jenkins.Username = username
	}
	if token := os.Getenv("CENSUS_JENKINS_API_TOKEN"); token != "" {
		config.Jenkins.APIToken = token
	}
	if rateLimit := os.Getenv("CENSUS_JENKINS_RATE_LIMIT"); rateLimit != "" {
		if r, err := strconv.Atoi(rateLimit); err == nil {
			config.Jenkins.RateLimit = r
		}
	}

	// Source-control tokens
	if token := os.Getenv("CENSUS_GITLAB_TOKEN"); token != "" {
		config.SCM.GitLab.Token = token
	}
	if token := os.Getenv("CENSUS_GITHUB_TOKEN"); token != "" {
		config.SCM.GitHub.Token = token
	}

	// Workers configuration
	if count := os.Getenv("CENSUS_WORKERS"); count != "" {
		if c, err := strconv.Atoi(count); err == nil {
			config.Workers.Count = c
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("CENSUS_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("CENSUS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("CENSUS_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority).
// Empty values leave the config untouched.
func ApplyFlagOverrides(config *Config, outputPath, schedule string, workers int) {
	if outputPath != "" {
		config.Export.Path = outputPath
	}
	if schedule != "" {
		config.Schedule.Enabled = true
		config.Schedule.Cron = schedule
	}
	if workers > 0 {
		config.Workers.Count = workers
	}
}

// Validate checks the configuration for structural problems before a run.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := time.ParseDuration(c.Jenkins.Timeout); err != nil {
		return fmt.Errorf("invalid jenkins.timeout %q: %w", c.Jenkins.Timeout, err)
	}
	if c.Cache.Enabled {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("invalid cache.ttl %q: %w", c.Cache.TTL, err)
		}
	}
	if c.Schedule.Enabled {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			return fmt.Errorf("invalid schedule.cron %q: %w", c.Schedule.Cron, err)
		}
	}
	if len(c.SCM.DefaultBranches) == 0 {
		return fmt.Errorf("scm.default_branches must not be empty")
	}

	return nil
}

// RootPath returns the configured traversal root as path segments.
func (c *Config) RootPath() []string {
	root := strings.Trim(c.Jenkins.Root, "/")
	if root == "" {
		return nil
	}
	return strings.Split(root, "/")
}

// JenkinsTimeout returns the parsed per-request timeout.
func (c *Config) JenkinsTimeout() time.Duration {
	d, err := time.ParseDuration(c.Jenkins.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// CacheTTL returns the parsed source-cache TTL.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
