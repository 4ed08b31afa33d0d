package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	usajobsKeywords      []string
	usajobsSkipAutoClose bool
)

var scrapeUSAJobsCmd = &cobra.Command{
	Use:   "scrape-usajobs",
	Short: "Search the USAJobs API for postings",
	Long: `Page through the USAJobs search API for each keyword, normalize the results and upsert
them with the configured policy, then auto-close postings older than retention.close_after_days.
Requires USAJOBS_API_KEY and USAJOBS_USER_EMAIL.`,
	RunE: runScrapeUSAJobs,
}

func init() {
	scrapeUSAJobsCmd.Flags().StringSliceVar(&usajobsKeywords, "keywords", nil, "Search keywords (defaults to usajobs.keywords)")
	scrapeUSAJobsCmd.Flags().BoolVar(&usajobsSkipAutoClose, "skip-auto-close", false, "Do not close stale postings afterwards")
	rootCmd.AddCommand(scrapeUSAJobsCmd)
}

func runScrapeUSAJobs(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appCfg
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	out := cmd.OutOrStdout()

	keywords := usajobsKeywords
	if len(keywords) == 0 {
		keywords = cfg.USAJobs.Keywords
	}
	if len(keywords) == 0 {
		return errors.New("no keywords: pass --keywords or set usajobs.keywords in the config file")
	}
	if err := cfg.ValidateFederal(); err != nil {
		return err
	}

	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	comp, err := buildComponents(ctx, cfg, database, logger, buildOptions{Federal: true, Notify: true})
	if err != nil {
		return err
	}
	defer comp.Close()

	run, summary, err := comp.Orchestrator.RunKeywords(ctx, keywords)
	printRun(out, cfg.Verbose, run, summary)
	if err != nil {
		return fmt.Errorf("USAJobs scrape failed: %w", err)
	}

	if usajobsSkipAutoClose {
		return nil
	}
	closed, err := comp.Cleaner.CloseStale(ctx, cfg.CloseAfter())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Auto-closed %d postings older than %d days\n", closed, cfg.Retention.CloseAfterDays)
	return nil
}
