package pipeline

import (
	"context"
	"errors"

	"github.com/jonathan/job-scraper/internal/discovery"
	"github.com/jonathan/job-scraper/internal/fetch"
	"github.com/jonathan/job-scraper/internal/normalize"
)

func (o *Orchestrator) scrapeSite(ctx context.Context, pageURL string, stats *SourceStats) error {
	doc, err := o.deps.Pages.Page(ctx, pageURL)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.logger.Warn("listing page fetch failed", "url", pageURL, "error", err)
		stats.Error = err.Error()
		return nil
	}

	found := o.discoverer.Find(doc)
	if len(found.Candidates) == 0 {
		found = o.rerender(ctx, pageURL, found)
	}
	candidates := discovery.Cap(found.Candidates, o.cfg.MaxCandidates)
	stats.Candidates = len(candidates)
	if len(candidates) == 0 {
		o.logger.Info("no listings found", "url", pageURL)
		return nil
	}
	o.logger.Debug("listings discovered", "url", pageURL, "count", len(candidates), "pattern", found.Pattern)

	for i, candidate := range candidates {
		if o.cfg.Pacing.batchPause(i) {
			if err := o.cfg.Sleep(ctx, o.cfg.Pacing.BatchDelay); err != nil {
				return err
			}
		}

		draft, err := o.html.Normalize(ctx, candidate, pageURL)
		if err != nil {
			var rej *normalize.RejectError
			if !errors.As(err, &rej) && ctx.Err() != nil {
				return ctx.Err()
			}
			o.logger.Debug("candidate skipped", "url", pageURL, "index", i, "reason", err)
			stats.Rejected++
			continue
		}
		if err := o.apply(ctx, o.sites, draft, stats); err != nil {
			return err
		}
	}
	return nil
}

// rerender retries discovery on the script-rendered page when enabled.
func (o *Orchestrator) rerender(ctx context.Context, pageURL string, static discovery.Result) discovery.Result {
	if !o.cfg.UseBrowser || o.deps.Renderer == nil {
		return static
	}
	html, err := o.deps.Renderer.Render(ctx, pageURL)
	if err != nil {
		o.logger.Warn("browser render failed", "url", pageURL, "error", err)
		return static
	}
	doc, err := fetch.ParseDocument([]byte(html), pageURL)
	if err != nil {
		return static
	}
	return o.discoverer.Find(doc)
}

var (
	_ PageFetcher = (*fetch.Client)(nil)
	_ Renderer    = (*fetch.BrowserRenderer)(nil)
)
