// Package main provides the job_scraper command line: scraping, cleanup, scheduling and the REST API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-scraper/internal/config"
)

var (
	configPath string
	verbose    bool

	// Set by loadSettings before any subcommand runs.
	appCfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "job_scraper",
	Short: "Job posting ingestion and normalization",
	Long: `job_scraper discovers postings on career pages and the USAJobs search API, normalizes them
into canonical job records and stores them with deduplication on the apply link.

Configuration is read from --config (JSON or YAML), then overridden by the environment
(DATABASE_URL, REDIS_URL, USAJOBS_API_KEY, USAJOBS_USER_EMAIL, SMTP_PASSWORD, PORT).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging and detailed summaries")
}

func loadSettings(_ *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(configPath, os.LookupEnv)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Verbose = true
	}
	appCfg = cfg
	return nil
}

// resolveConfig loads the file (or defaults), applies environment overrides and validates.
func resolveConfig(path string, lookup func(string) (string, bool)) (*config.Config, error) {
	var cfg *config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		def := config.Default()
		cfg = &def
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
