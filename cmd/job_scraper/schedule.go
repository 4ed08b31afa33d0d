package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-scraper/internal/config"
	"github.com/jonathan/job-scraper/internal/pipeline"
	"github.com/jonathan/job-scraper/internal/scheduler"
)

// Scheduled task names.
const (
	taskSites   = "scrape-sites"
	taskFederal = "scrape-usajobs"
	taskPurge   = "purge-closed"
)

var (
	scheduleServe bool
	scheduleRun   string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run scrapes and cleanup on cron schedules",
	Long: `Register the site scrape, the USAJobs scrape (followed by auto-close) and the retention
purge on the cron specs in the schedule section of the config, then run until interrupted.
With --serve the REST API runs alongside. With --run the named task runs once and the
command exits.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleServe, "serve", false, "Also serve the REST API")
	scheduleCmd.Flags().StringVar(&scheduleRun, "run", "", "Run one task now and exit ("+taskSites+", "+taskFederal+", "+taskPurge+")")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appCfg
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	federal := cfg.ValidateFederal() == nil
	if !federal {
		logger.Warn("USAJobs credentials missing, federal scrape disabled")
	}
	comp, err := buildComponents(ctx, cfg, database, logger, buildOptions{Federal: federal, Notify: true})
	if err != nil {
		return err
	}
	defer comp.Close()

	runner := &serialRunner{orch: comp.Orchestrator}
	sched := scheduler.New(logger)
	if err := registerTasks(sched, cfg, runner, comp.Cleaner, federal, logger); err != nil {
		return err
	}

	if scheduleRun != "" {
		return sched.RunNow(ctx, scheduleRun)
	}

	sched.Start(ctx)
	g, gctx := errgroup.WithContext(ctx)
	if scheduleServe {
		srv, err := newServer(database, cfg, comp, runner, 0, logger)
		if err != nil {
			sched.Stop()
			return err
		}
		g.Go(func() error { return srv.Serve(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		sched.Stop()
		return nil
	})
	return g.Wait()
}

// registerTasks adds the three scheduled entry points. The federal task is registered without a
// schedule when credentials are missing.
func registerTasks(sched *scheduler.Scheduler, cfg *config.Config, runner *serialRunner, cleaner *pipeline.Cleaner, federal bool, logger *slog.Logger) error {
	sites := func(ctx context.Context) error {
		if len(cfg.Sources) == 0 {
			logger.Warn("no sources configured, skipping site scrape")
			return nil
		}
		_, _, err := runner.RunSites(ctx, cfg.Sources)
		return err
	}

	usajobs := func(ctx context.Context) error {
		if !federal {
			return fmt.Errorf("USAJobs credentials are not configured")
		}
		if len(cfg.USAJobs.Keywords) == 0 {
			logger.Warn("no keywords configured, skipping USAJobs scrape")
		} else if _, _, err := runner.RunKeywords(ctx, cfg.USAJobs.Keywords); err != nil {
			return err
		}
		_, err := cleaner.CloseStale(ctx, cfg.CloseAfter())
		return err
	}

	purge := func(ctx context.Context) error {
		_, err := cleaner.PurgeClosed(ctx, cfg.DeleteAfter())
		return err
	}

	federalSpec := cfg.Schedule.Federal
	if !federal {
		federalSpec = ""
	}
	for _, t := range []struct {
		name string
		spec string
		task scheduler.Task
	}{
		{taskSites, cfg.Schedule.Sites, sites},
		{taskFederal, federalSpec, usajobs},
		{taskPurge, cfg.Schedule.Purge, purge},
	} {
		if err := sched.Add(t.name, t.spec, t.task); err != nil {
			return err
		}
	}
	return nil
}
