package db

import (
	"context"
	"fmt"

	"github.com/jonathan/job-scraper/internal/types"
)

// CreateRun inserts a new scrape run.
func (db *DB) CreateRun(ctx context.Context, run *types.ScrapeRun) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO scrape_runs (id, status, targets, jobs_found, jobs_added, jobs_updated,
		                          error_message, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, string(run.Status), nonNil(run.Targets), run.JobsFound, run.JobsAdded,
		run.JobsUpdated, run.ErrorMessage, run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// UpdateRun writes the run's status, counters and completion time.
func (db *DB) UpdateRun(ctx context.Context, run *types.ScrapeRun) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE scrape_runs
		 SET status = $1, jobs_found = $2, jobs_added = $3, jobs_updated = $4,
		     error_message = $5, completed_at = $6
		 WHERE id = $7`,
		string(run.Status), run.JobsFound, run.JobsAdded, run.JobsUpdated,
		run.ErrorMessage, run.CompletedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	return nil
}

// ListRuns returns runs, most recent first.
func (db *DB) ListRuns(ctx context.Context, filter RunFilter) ([]types.ScrapeRun, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, status, targets, jobs_found, jobs_added, jobs_updated, error_message,
	                 started_at, completed_at
	          FROM scrape_runs`
	args := []interface{}{limit}
	if filter.Status != "" {
		query += ` WHERE status = $2`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY started_at DESC LIMIT $1`

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []types.ScrapeRun
	for rows.Next() {
		var r types.ScrapeRun
		var status string
		if err := rows.Scan(&r.ID, &status, &r.Targets, &r.JobsFound, &r.JobsAdded,
			&r.JobsUpdated, &r.ErrorMessage, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, err
		}
		r.Status = types.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
