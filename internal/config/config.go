// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/job-scraper/internal/upsert"
)

// Environment variables that override file values. Secrets should only ever come from here.
const (
	EnvDatabaseURL      = "DATABASE_URL"
	EnvRedisURL         = "REDIS_URL"
	EnvUSAJobsAPIKey    = "USAJOBS_API_KEY"
	EnvUSAJobsUserEmail = "USAJOBS_USER_EMAIL"
	EnvSMTPPassword     = "SMTP_PASSWORD"
	EnvPort             = "PORT"
)

// Config is the full scraper configuration. It can be loaded from JSON or YAML; every field is
// optional and Default supplies the rest.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	RedisURL    string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	// Sources are the listing pages scraped by the generic path.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	HTTP      HTTPConfig      `json:"http" yaml:"http"`
	Scrape    ScrapeConfig    `json:"scrape" yaml:"scrape"`
	USAJobs   USAJobsConfig   `json:"usajobs" yaml:"usajobs"`
	Retention RetentionConfig `json:"retention" yaml:"retention"`
	Schedule  ScheduleConfig  `json:"schedule" yaml:"schedule"`
	Notify    NotifyConfig    `json:"notify" yaml:"notify"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
}

// HTTPConfig controls outbound requests.
type HTTPConfig struct {
	UserAgent          string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	Headers            map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	PageTimeout        Duration          `json:"page_timeout,omitempty" yaml:"page_timeout,omitempty"`
	DescriptionTimeout Duration          `json:"description_timeout,omitempty" yaml:"description_timeout,omitempty"`
	UseBrowser         bool              `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`
	BrowserTimeout     Duration          `json:"browser_timeout,omitempty" yaml:"browser_timeout,omitempty"`
}

// ScrapeConfig controls the generic listing path.
type ScrapeConfig struct {
	MaxCandidates int      `json:"max_candidates,omitempty" yaml:"max_candidates,omitempty"`
	SourceDelay   Duration `json:"source_delay,omitempty" yaml:"source_delay,omitempty"`
	BatchSize     int      `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	BatchDelay    Duration `json:"batch_delay,omitempty" yaml:"batch_delay,omitempty"`
}

// USAJobsConfig controls the structured API path.
type USAJobsConfig struct {
	BaseURL        string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey         string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	UserEmail      string   `json:"user_email,omitempty" yaml:"user_email,omitempty"`
	Keywords       []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	ResultsPerPage int      `json:"results_per_page,omitempty" yaml:"results_per_page,omitempty"`
	MaxPages       int      `json:"max_pages,omitempty" yaml:"max_pages,omitempty"`
	Timeout        Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	PageDelay      Duration `json:"page_delay,omitempty" yaml:"page_delay,omitempty"`
	KeywordDelay   Duration `json:"keyword_delay,omitempty" yaml:"keyword_delay,omitempty"`
	// UpsertPolicy is "skip_on_existing" or "reconcile_closed_flag".
	UpsertPolicy string `json:"upsert_policy,omitempty" yaml:"upsert_policy,omitempty"`
}

// RetentionConfig holds the cleanup thresholds.
type RetentionConfig struct {
	CloseAfterDays  int `json:"close_after_days,omitempty" yaml:"close_after_days,omitempty"`
	DeleteAfterDays int `json:"delete_after_days,omitempty" yaml:"delete_after_days,omitempty"`
}

// ScheduleConfig holds cron specs for the scheduled entry points. An empty spec disables the entry.
type ScheduleConfig struct {
	Sites   string `json:"sites,omitempty" yaml:"sites,omitempty"`
	Federal string `json:"federal,omitempty" yaml:"federal,omitempty"`
	Purge   string `json:"purge,omitempty" yaml:"purge,omitempty"`
}

// NotifyConfig controls subscriber emails.
type NotifyConfig struct {
	Enabled      bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	SMTPHost     string `json:"smtp_host,omitempty" yaml:"smtp_host,omitempty"`
	SMTPPort     int    `json:"smtp_port,omitempty" yaml:"smtp_port,omitempty"`
	SMTPUsername string `json:"smtp_username,omitempty" yaml:"smtp_username,omitempty"`
	SMTPPassword string `json:"smtp_password,omitempty" yaml:"smtp_password,omitempty"`
	From         string `json:"from,omitempty" yaml:"from,omitempty"`
	// ZipFile is a GeoNames postal code dump used for distance filtering.
	ZipFile     string `json:"zip_file,omitempty" yaml:"zip_file,omitempty"`
	Concurrency int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
}

// ServerConfig controls the read-only REST API.
type ServerConfig struct {
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
}

// CacheConfig controls the description cache. It is only used when RedisURL is set.
type CacheConfig struct {
	DescriptionTTL Duration `json:"description_ttl,omitempty" yaml:"description_ttl,omitempty"`
}

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			PageTimeout:        Duration(15 * time.Second),
			DescriptionTimeout: Duration(5 * time.Second),
			BrowserTimeout:     Duration(60 * time.Second),
		},
		Scrape: ScrapeConfig{
			MaxCandidates: 100,
			SourceDelay:   Duration(2 * time.Second),
			BatchSize:     10,
			BatchDelay:    Duration(time.Second),
		},
		USAJobs: USAJobsConfig{
			BaseURL:        "https://data.usajobs.gov/api/search",
			ResultsPerPage: 100,
			MaxPages:       2,
			Timeout:        Duration(15 * time.Second),
			PageDelay:      Duration(2 * time.Second),
			KeywordDelay:   Duration(3 * time.Second),
			UpsertPolicy:   upsert.PolicyNameSkip,
		},
		Retention: RetentionConfig{
			CloseAfterDays:  60,
			DeleteAfterDays: 90,
		},
		Schedule: ScheduleConfig{
			Sites:   "0 0 * * *",
			Federal: "0 2 * * *",
			Purge:   "0 1 * * 0",
		},
		Notify: NotifyConfig{
			SMTPPort:    587,
			Concurrency: 4,
		},
		Server: ServerConfig{Port: 8080},
		Cache:  CacheConfig{DescriptionTTL: Duration(7 * 24 * time.Hour)},
	}
}

// LoadConfig loads configuration from a JSON or YAML file (chosen by extension) on top of
// Default. Environment overrides are not applied; call ApplyEnv for that.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from the environment using lookup (usually os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		c.DatabaseURL = v
	}
	if v, ok := lookup(EnvRedisURL); ok && v != "" {
		c.RedisURL = v
	}
	if v, ok := lookup(EnvUSAJobsAPIKey); ok && v != "" {
		c.USAJobs.APIKey = v
	}
	if v, ok := lookup(EnvUSAJobsUserEmail); ok && v != "" {
		c.USAJobs.UserEmail = v
	}
	if v, ok := lookup(EnvSMTPPassword); ok && v != "" {
		c.Notify.SMTPPassword = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be a number: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks that the configuration has valid values. Credentials are checked separately
// by ValidateFederal because only the API path needs them.
func (c *Config) Validate() error {
	if c.Scrape.MaxCandidates < 0 {
		return fmt.Errorf("config error: 'scrape.max_candidates' must be non-negative")
	}
	if c.Scrape.BatchSize < 0 {
		return fmt.Errorf("config error: 'scrape.batch_size' must be non-negative")
	}
	if c.USAJobs.ResultsPerPage < 0 || c.USAJobs.ResultsPerPage > 500 {
		return fmt.Errorf("config error: 'usajobs.results_per_page' must be between 0 and 500")
	}
	if c.USAJobs.MaxPages < 0 {
		return fmt.Errorf("config error: 'usajobs.max_pages' must be non-negative")
	}
	if _, err := c.APIPolicy(); err != nil {
		return fmt.Errorf("config error: 'usajobs.upsert_policy': %w", err)
	}
	if c.Retention.CloseAfterDays <= 0 {
		return fmt.Errorf("config error: 'retention.close_after_days' must be positive")
	}
	if c.Retention.DeleteAfterDays <= 0 {
		return fmt.Errorf("config error: 'retention.delete_after_days' must be positive")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be a valid TCP port")
	}
	for _, d := range []struct {
		name  string
		value Duration
	}{
		{"http.page_timeout", c.HTTP.PageTimeout},
		{"http.description_timeout", c.HTTP.DescriptionTimeout},
		{"scrape.source_delay", c.Scrape.SourceDelay},
		{"scrape.batch_delay", c.Scrape.BatchDelay},
		{"usajobs.timeout", c.USAJobs.Timeout},
		{"usajobs.page_delay", c.USAJobs.PageDelay},
		{"usajobs.keyword_delay", c.USAJobs.KeywordDelay},
	} {
		if d.value < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", d.name)
		}
	}
	// Without an SMTP host, enabled notifications are only logged.
	if c.Notify.SMTPHost != "" && c.Notify.From == "" {
		return fmt.Errorf("config error: 'notify.from' is required when 'notify.smtp_host' is set")
	}
	if c.Notify.ZipFile != "" {
		if _, err := os.Stat(c.Notify.ZipFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: zip file not found: %s", c.Notify.ZipFile)
		}
	}
	return nil
}

// ValidateFederal checks the settings the structured API path requires.
func (c *Config) ValidateFederal() error {
	if c.USAJobs.APIKey == "" {
		return fmt.Errorf("config error: USAJobs API key is required (set %s)", EnvUSAJobsAPIKey)
	}
	if c.USAJobs.UserEmail == "" {
		return fmt.Errorf("config error: USAJobs contact email is required (set %s)", EnvUSAJobsUserEmail)
	}
	return nil
}

// APIPolicy returns the configured upsert policy for the API path.
func (c *Config) APIPolicy() (upsert.Policy, error) {
	if c.USAJobs.UpsertPolicy == "" {
		return upsert.SkipOnExisting, nil
	}
	return upsert.ParsePolicy(c.USAJobs.UpsertPolicy)
}

// CloseAfter returns the auto-close threshold.
func (c *Config) CloseAfter() time.Duration {
	return days(c.Retention.CloseAfterDays)
}

// DeleteAfter returns the retention threshold for closed jobs.
func (c *Config) DeleteAfter() time.Duration {
	return days(c.Retention.DeleteAfterDays)
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
