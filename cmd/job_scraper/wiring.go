package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/jonathan/job-scraper/internal/config"
	"github.com/jonathan/job-scraper/internal/db"
	"github.com/jonathan/job-scraper/internal/fetch"
	"github.com/jonathan/job-scraper/internal/geo"
	"github.com/jonathan/job-scraper/internal/notify"
	"github.com/jonathan/job-scraper/internal/observability"
	"github.com/jonathan/job-scraper/internal/pipeline"
	"github.com/jonathan/job-scraper/internal/server"
	"github.com/jonathan/job-scraper/internal/types"
	"github.com/jonathan/job-scraper/internal/usajobs"
)

// Store is everything the commands need from persistence. *db.DB and *db.MemoryStore satisfy it.
type Store interface {
	pipeline.Store
	pipeline.CleanupStore
	server.Store
	notify.SubscriberSource
}

var (
	_ Store = (*db.DB)(nil)
	_ Store = (*db.MemoryStore)(nil)
)

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func openDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required (set %s or database_url)", config.EnvDatabaseURL)
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

type buildOptions struct {
	// Federal builds the USAJobs client; credentials must be configured.
	Federal bool
	// Notify attaches the new-posting notifier when notifications are enabled.
	Notify bool
}

// components are the wired collaborators shared by the commands.
type components struct {
	Orchestrator *pipeline.Orchestrator
	Cleaner      *pipeline.Cleaner
	Zips         *geo.ZipTable
	closers      []func()
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func buildComponents(ctx context.Context, cfg *config.Config, store Store, logger *slog.Logger, opts buildOptions) (*components, error) {
	comp := &components{}

	client := fetch.NewClient(fetch.ClientConfig{
		UserAgent:          cfg.HTTP.UserAgent,
		Headers:            cfg.HTTP.Headers,
		PageTimeout:        cfg.HTTP.PageTimeout.Std(),
		DescriptionTimeout: cfg.HTTP.DescriptionTimeout.Std(),
		Logger:             logger,
	})

	deps := pipeline.Deps{Store: store, Pages: client, Describer: client}

	if cfg.RedisURL != "" {
		cache, err := fetch.NewRedisDescriptionCache(ctx, cfg.RedisURL, cfg.Cache.DescriptionTTL.Std())
		if err != nil {
			logger.Warn("description cache unavailable, fetching directly", "error", err)
		} else {
			deps.Describer = fetch.NewCachedDescriber(client, cache, logger)
			comp.closers = append(comp.closers, func() { _ = cache.Close() })
		}
	}

	if cfg.HTTP.UseBrowser {
		renderer := fetch.NewBrowserRenderer(logger)
		if cfg.HTTP.BrowserTimeout > 0 {
			renderer.Timeout = cfg.HTTP.BrowserTimeout.Std()
		}
		deps.Renderer = renderer
	}

	if cfg.Notify.ZipFile != "" {
		zips, err := geo.LoadZipFile(cfg.Notify.ZipFile)
		if err != nil {
			comp.Close()
			return nil, fmt.Errorf("failed to load zip codes: %w", err)
		}
		comp.Zips = zips
	}

	if opts.Federal {
		if err := cfg.ValidateFederal(); err != nil {
			comp.Close()
			return nil, err
		}
		search, err := usajobs.NewClient(usajobs.Config{
			BaseURL:        cfg.USAJobs.BaseURL,
			APIKey:         cfg.USAJobs.APIKey,
			UserEmail:      cfg.USAJobs.UserEmail,
			ResultsPerPage: cfg.USAJobs.ResultsPerPage,
			MaxPages:       cfg.USAJobs.MaxPages,
			Timeout:        cfg.USAJobs.Timeout.Std(),
		}, client, logger)
		if err != nil {
			comp.Close()
			return nil, err
		}
		deps.Search = search
	}

	if opts.Notify && cfg.Notify.Enabled {
		notifier, err := buildNotifier(cfg, store, comp.Zips, logger)
		if err != nil {
			comp.Close()
			return nil, err
		}
		deps.OnCreated = notifier.Hook
	}

	policy, err := cfg.APIPolicy()
	if err != nil {
		comp.Close()
		return nil, err
	}
	orch, err := pipeline.New(deps, pipeline.Config{
		MaxCandidates: cfg.Scrape.MaxCandidates,
		UseBrowser:    cfg.HTTP.UseBrowser,
		Pacing: pipeline.Pacing{
			SourceDelay:  cfg.Scrape.SourceDelay.Std(),
			BatchSize:    cfg.Scrape.BatchSize,
			BatchDelay:   cfg.Scrape.BatchDelay.Std(),
			PageDelay:    cfg.USAJobs.PageDelay.Std(),
			KeywordDelay: cfg.USAJobs.KeywordDelay.Std(),
		},
		APIPolicy: policy,
		OnProgress: func(ev pipeline.ProgressEvent) {
			logger.Debug("source finished", "run_id", ev.RunID, "source", ev.Source, "message", ev.Message)
		},
		Logger: logger,
	})
	if err != nil {
		comp.Close()
		return nil, err
	}
	comp.Orchestrator = orch
	comp.Cleaner = pipeline.NewCleaner(store, nil, logger)
	return comp, nil
}

func buildNotifier(cfg *config.Config, subs notify.SubscriberSource, zips *geo.ZipTable, logger *slog.Logger) (*notify.Notifier, error) {
	var sender notify.Sender = notify.LogSender{Logger: logger}
	if cfg.Notify.SMTPHost != "" {
		smtpSender, err := notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.Notify.SMTPHost,
			Port:     cfg.Notify.SMTPPort,
			Username: cfg.Notify.SMTPUsername,
			Password: cfg.Notify.SMTPPassword,
			From:     cfg.Notify.From,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure SMTP: %w", err)
		}
		sender = smtpSender
	}

	opts := []notify.Option{notify.WithLogger(logger), notify.WithConcurrency(cfg.Notify.Concurrency)}
	if zips != nil {
		opts = append(opts, notify.WithZipLookup(zips))
	}
	return notify.New(subs, sender, opts...), nil
}

// serialRunner keeps runs from overlapping when the scheduler and the REST API share one
// orchestrator.
type serialRunner struct {
	mu   sync.Mutex
	orch *pipeline.Orchestrator
}

func (r *serialRunner) RunSites(ctx context.Context, urls []string) (*types.ScrapeRun, *pipeline.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orch.RunSites(ctx, urls)
}

func (r *serialRunner) RunKeywords(ctx context.Context, keywords []string) (*types.ScrapeRun, *pipeline.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orch.RunKeywords(ctx, keywords)
}

// printRun writes the one-line result and, when detailed, the per-source breakdown.
func printRun(out io.Writer, detailed bool, run *types.ScrapeRun, summary *pipeline.Summary) {
	if run == nil {
		return
	}
	if detailed {
		observability.NewPrinter(out).PrintRun(run, summary)
		return
	}
	fmt.Fprintf(out, "Run %s %s. Found: %d, Created: %d, Updated: %d\n",
		run.ID, run.Status, run.JobsFound, run.JobsAdded, run.JobsUpdated)
	if summary != nil {
		for _, failed := range summary.Failed() {
			fmt.Fprintf(out, "  %s: %s\n", failed.Source, failed.Error)
		}
	}
}
