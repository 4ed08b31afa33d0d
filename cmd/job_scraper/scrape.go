package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-scraper/internal/db"
	"github.com/jonathan/job-scraper/internal/observability"
)

var (
	scrapeURLs   []string
	scrapeDryRun bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape career pages for postings",
	Long: `Fetch each listing page, discover candidate postings, normalize them and upsert them.
Defaults to the sources in the config file. With --dry-run records are kept in memory and
printed instead of stored, and no notifications are sent.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringSliceVar(&scrapeURLs, "urls", nil, "Listing page URLs (comma separated)")
	scrapeCmd.Flags().BoolVar(&scrapeDryRun, "dry-run", false, "Normalize without touching the database")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appCfg
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	out := cmd.OutOrStdout()

	urls := scrapeURLs
	if len(urls) == 0 {
		urls = cfg.Sources
	}
	if len(urls) == 0 {
		return errors.New("no URLs to scrape: pass --urls or set sources in the config file")
	}

	var store Store
	var memory *db.MemoryStore
	if scrapeDryRun {
		memory = db.NewMemoryStore()
		store = memory
	} else {
		database, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		store = database
	}

	comp, err := buildComponents(ctx, cfg, store, logger, buildOptions{Notify: !scrapeDryRun})
	if err != nil {
		return err
	}
	defer comp.Close()

	run, summary, err := comp.Orchestrator.RunSites(ctx, urls)
	printRun(out, cfg.Verbose, run, summary)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	if memory != nil {
		jobs, _, err := memory.ListJobs(ctx, db.JobFilter{Limit: db.MaxListLimit})
		if err != nil {
			return err
		}
		observability.NewPrinter(out).PrintJobs(jobs)
	}
	return nil
}
