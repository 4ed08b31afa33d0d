package pipeline

import (
	"context"
	"errors"

	"github.com/jonathan/job-scraper/internal/normalize"
	"github.com/jonathan/job-scraper/internal/usajobs"
)

func (o *Orchestrator) searchKeyword(ctx context.Context, keyword string, stats *SourceStats) error {
	collected := 0
	for page := 1; page <= o.deps.Search.MaxPages(); page++ {
		if page > 1 {
			if err := o.cfg.Sleep(ctx, o.cfg.Pacing.PageDelay); err != nil {
				return err
			}
		}

		result, err := o.deps.Search.Search(ctx, keyword, page)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.logger.Warn("API request failed", "keyword", keyword, "page", page, "error", err)
			stats.Error = err.Error()
			return nil
		}
		if result.Count == 0 {
			break
		}

		stats.Candidates += len(result.Items) + len(result.Invalid)
		stats.Rejected += len(result.Invalid)
		collected += len(result.Items) + len(result.Invalid)

		for _, item := range result.Items {
			draft, err := o.api.Normalize(item)
			if err != nil {
				var rej *normalize.RejectError
				if errors.As(err, &rej) {
					stats.Rejected++
					continue
				}
				return err
			}
			if err := o.apply(ctx, o.keywords, draft, stats); err != nil {
				return err
			}
		}

		if collected >= result.Total {
			break
		}
	}
	return nil
}

var _ Searcher = (*usajobs.Client)(nil)
