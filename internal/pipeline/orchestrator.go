// Package pipeline sequences fetch, discovery, normalization and upsert across listing sites and
// API keywords, and records the provenance of every run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/job-scraper/internal/discovery"
	"github.com/jonathan/job-scraper/internal/extract"
	"github.com/jonathan/job-scraper/internal/fetch"
	"github.com/jonathan/job-scraper/internal/normalize"
	"github.com/jonathan/job-scraper/internal/types"
	"github.com/jonathan/job-scraper/internal/upsert"
	"github.com/jonathan/job-scraper/internal/usajobs"
)

// Store is the persistence the orchestrator needs: the upsert surface plus run provenance.
type Store interface {
	upsert.Store
	CreateRun(ctx context.Context, run *types.ScrapeRun) error
	UpdateRun(ctx context.Context, run *types.ScrapeRun) error
}

// PageFetcher loads and parses a listing page. *fetch.Client satisfies it.
type PageFetcher interface {
	Page(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// Renderer returns the HTML of a page after scripts have run. *fetch.BrowserRenderer satisfies it.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (string, error)
}

// Searcher pages through the structured job API. *usajobs.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, keyword string, page int) (*usajobs.Page, error)
	MaxPages() int
}

// ProgressEvent represents a progress update during a run.
type ProgressEvent struct {
	RunID   string       `json:"run_id"`
	Source  string       `json:"source"`
	Message string       `json:"message"`
	Stats   *SourceStats `json:"stats,omitempty"`
}

// ProgressCallback is called after each source finishes.
type ProgressCallback func(event ProgressEvent)

// Deps are the collaborators of an Orchestrator. Store and Pages are required for site runs;
// Search is required for keyword runs.
type Deps struct {
	Store     Store
	Pages     PageFetcher
	Describer fetch.Describer
	Renderer  Renderer
	Search    Searcher
	// OnCreated runs for every newly created open record.
	OnCreated upsert.CreatedHook
}

// Config tunes an Orchestrator.
type Config struct {
	MaxCandidates int
	// UseBrowser re-renders a listing page headlessly when static HTML yields no candidates.
	UseBrowser bool
	Pacing     Pacing
	// APIPolicy is the conflict policy for keyword runs. Site runs always reconcile the
	// closed flag.
	APIPolicy  upsert.Policy
	Patterns   []discovery.Pattern
	OnProgress ProgressCallback
	Logger     *slog.Logger
	// Now and Sleep default to time.Now and a context-aware timer.
	Now   func() time.Time
	Sleep SleepFunc
}

// Orchestrator runs scrapes. Runs are sequential by construction; callers must not run two
// against the same store at once.
type Orchestrator struct {
	deps       Deps
	cfg        Config
	logger     *slog.Logger
	discoverer *discovery.Discoverer
	html       *normalize.HTMLNormalizer
	api        *normalize.APINormalizer
	sites      *upsert.Engine
	keywords   *upsert.Engine
}

// New creates an Orchestrator.
func New(deps Deps, cfg Config) (*Orchestrator, error) {
	if deps.Store == nil {
		return nil, errors.New("pipeline: store is required")
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = discovery.DefaultMaxCandidates
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	hookOpts := []upsert.Option{upsert.WithLogger(logger)}
	if deps.OnCreated != nil {
		hookOpts = append(hookOpts, upsert.WithCreatedHook(deps.OnCreated))
	}

	return &Orchestrator{
		deps:       deps,
		cfg:        cfg,
		logger:     logger,
		discoverer: discovery.New(cfg.Patterns),
		html:       normalize.NewHTMLNormalizer(extract.NewGeneric(), deps.Describer, logger),
		api:        normalize.NewAPINormalizer(extract.NewFederal()),
		sites:      upsert.New(deps.Store, upsert.ReconcileClosedFlag, hookOpts...),
		keywords:   upsert.New(deps.Store, cfg.APIPolicy, hookOpts...),
	}, nil
}

// KeywordTarget is how an API keyword is recorded in a run's targets.
func KeywordTarget(keyword string) string {
	return "USAJobs: " + keyword
}

// RunSites scrapes each listing URL in order. A source whose page cannot be fetched is recorded
// in its stats and skipped. A store failure fails the run and is returned as *RunError.
func (o *Orchestrator) RunSites(ctx context.Context, urls []string) (*types.ScrapeRun, *Summary, error) {
	if o.deps.Pages == nil {
		return nil, nil, errors.New("pipeline: page fetcher is required for site runs")
	}
	return o.run(ctx, urls, urls, o.cfg.Pacing.SourceDelay, o.scrapeSite)
}

// RunKeywords searches the structured API for each keyword in order.
func (o *Orchestrator) RunKeywords(ctx context.Context, keywords []string) (*types.ScrapeRun, *Summary, error) {
	if o.deps.Search == nil {
		return nil, nil, errors.New("pipeline: API client is required for keyword runs")
	}
	targets := make([]string, len(keywords))
	for i, kw := range keywords {
		targets[i] = KeywordTarget(kw)
	}
	return o.run(ctx, targets, keywords, o.cfg.Pacing.KeywordDelay, o.searchKeyword)
}

type sourceFunc func(ctx context.Context, source string, stats *SourceStats) error

func (o *Orchestrator) run(ctx context.Context, targets, sources []string, delay time.Duration, process sourceFunc) (*types.ScrapeRun, *Summary, error) {
	run := types.NewScrapeRun(targets, o.cfg.Now())
	// Provenance is written even if the caller's context is already cancelled.
	persistCtx := context.WithoutCancel(ctx)
	if err := o.deps.Store.CreateRun(persistCtx, run); err != nil {
		return nil, nil, fmt.Errorf("failed to record scrape run: %w", err)
	}
	o.logger.Info("scrape run started", "run_id", run.ID, "targets", len(targets))

	summary := &Summary{}
	for i, source := range sources {
		if i > 0 {
			if err := o.cfg.Sleep(ctx, delay); err != nil {
				return o.fail(persistCtx, run, summary, targets[i], err)
			}
		}

		stats := SourceStats{Source: targets[i]}
		err := process(ctx, source, &stats)
		summary.Sources = append(summary.Sources, stats)
		if addErr := run.Add(stats.Found, stats.Created, stats.Updated); addErr != nil {
			return o.fail(persistCtx, run, summary, targets[i], addErr)
		}
		if err != nil {
			return o.fail(persistCtx, run, summary, targets[i], err)
		}

		o.logger.Info("source finished",
			"run_id", run.ID, "source", stats.Source, "found", stats.Found, "created", stats.Created,
			"updated", stats.Updated, "rejected", stats.Rejected, "errors", stats.Errors, "fetch_error", stats.Error)
		o.progress(run, stats)
	}

	if err := run.Complete(o.cfg.Now()); err != nil {
		return run, summary, err
	}
	if err := o.deps.Store.UpdateRun(persistCtx, run); err != nil {
		return run, summary, fmt.Errorf("failed to record scrape run completion: %w", err)
	}
	o.logger.Info("scrape run completed",
		"run_id", run.ID, "found", run.JobsFound, "added", run.JobsAdded, "updated", run.JobsUpdated)
	return run, summary, nil
}

func (o *Orchestrator) fail(ctx context.Context, run *types.ScrapeRun, summary *Summary, target string, cause error) (*types.ScrapeRun, *Summary, error) {
	runErr := &RunError{RunID: run.ID, Target: target, Cause: cause}
	if err := run.Fail(runErr, o.cfg.Now()); err != nil {
		return run, summary, errors.Join(runErr, err)
	}
	if err := o.deps.Store.UpdateRun(ctx, run); err != nil {
		o.logger.Error("failed to record scrape run failure", "run_id", run.ID, "error", err)
		return run, summary, errors.Join(runErr, err)
	}
	o.logger.Error("scrape run failed", "run_id", run.ID, "target", target, "error", cause)
	return run, summary, runErr
}

func (o *Orchestrator) progress(run *types.ScrapeRun, stats SourceStats) {
	if o.cfg.OnProgress == nil {
		return
	}
	o.cfg.OnProgress(ProgressEvent{
		RunID:   run.ID.String(),
		Source:  stats.Source,
		Message: fmt.Sprintf("found %d, created %d, updated %d", stats.Found, stats.Created, stats.Updated),
		Stats:   &stats,
	})
}

// apply upserts one draft. Validation failures are counted; anything else is fatal to the run.
func (o *Orchestrator) apply(ctx context.Context, engine *upsert.Engine, draft *types.JobRecord, stats *SourceStats) error {
	stats.Found++
	outcome, err := engine.Upsert(ctx, draft)
	if err != nil {
		var verr *upsert.ValidationError
		if errors.As(err, &verr) {
			o.logger.Warn("invalid job record", "apply_link", verr.ApplyLink, "error", verr.Cause)
			stats.Errors++
			return nil
		}
		return err
	}
	stats.record(outcome)
	return nil
}
