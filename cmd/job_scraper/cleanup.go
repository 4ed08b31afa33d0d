package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-scraper/internal/observability"
	"github.com/jonathan/job-scraper/internal/pipeline"
)

var (
	cleanupCloseAfterDays  int
	cleanupDeleteAfterDays int
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Close stale postings and delete old closed ones",
	RunE:  runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupCloseAfterDays, "close-after-days", 0, "Close open postings first seen more than N days ago (default from config)")
	cleanupCmd.Flags().IntVar(&cleanupDeleteAfterDays, "delete-after-days", 0, "Delete closed postings not updated in N days (default from config)")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appCfg
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	closeAfter, deleteAfter := cfg.CloseAfter(), cfg.DeleteAfter()
	if cmd.Flags().Changed("close-after-days") {
		if cleanupCloseAfterDays <= 0 {
			return errors.New("--close-after-days must be positive")
		}
		closeAfter = time.Duration(cleanupCloseAfterDays) * 24 * time.Hour
	}
	if cmd.Flags().Changed("delete-after-days") {
		if cleanupDeleteAfterDays <= 0 {
			return errors.New("--delete-after-days must be positive")
		}
		deleteAfter = time.Duration(cleanupDeleteAfterDays) * 24 * time.Hour
	}

	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	cleaner := pipeline.NewCleaner(database, nil, logger)
	closed, deleted, err := runRetention(ctx, cleaner, closeAfter, deleteAfter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Verbose {
		observability.NewPrinter(out).PrintCleanup(closed, deleted)
		return nil
	}
	fmt.Fprintf(out, "Closed %d stale postings, deleted %d old closed postings\n", closed, deleted)
	return nil
}

// runRetention closes stale postings, then purges old closed ones.
func runRetention(ctx context.Context, cleaner *pipeline.Cleaner, closeAfter, deleteAfter time.Duration) (closed, deleted int64, err error) {
	closed, err = cleaner.CloseStale(ctx, closeAfter)
	if err != nil {
		return 0, 0, err
	}
	deleted, err = cleaner.PurgeClosed(ctx, deleteAfter)
	if err != nil {
		return closed, 0, err
	}
	return closed, deleted, nil
}
