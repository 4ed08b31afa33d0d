package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Default retention thresholds.
const (
	DefaultCloseAfter  = 60 * 24 * time.Hour
	DefaultDeleteAfter = 90 * 24 * time.Hour
)

// CleanupStore is the persistence the Cleaner needs.
type CleanupStore interface {
	CloseJobsFirstSeenBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteClosedJobsUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Cleaner applies time-based retention. Thresholds are always passed by the caller.
type Cleaner struct {
	store  CleanupStore
	now    func() time.Time
	logger *slog.Logger
}

// NewCleaner creates a Cleaner. A nil now defaults to time.Now.
func NewCleaner(store CleanupStore, now func() time.Time, logger *slog.Logger) *Cleaner {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cleaner{store: store, now: now, logger: logger}
}

// CloseStale marks open jobs first seen more than olderThan ago as closed.
func (c *Cleaner) CloseStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("close threshold must be positive")
	}
	cutoff := c.now().Add(-olderThan)
	n, err := c.store.CloseJobsFirstSeenBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("auto-close failed: %w", err)
	}
	c.logger.Info("closed stale jobs", "count", n, "cutoff", cutoff)
	return n, nil
}

// PurgeClosed deletes closed jobs not updated in the last olderThan.
func (c *Cleaner) PurgeClosed(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("delete threshold must be positive")
	}
	cutoff := c.now().Add(-olderThan)
	n, err := c.store.DeleteClosedJobsUpdatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge failed: %w", err)
	}
	c.logger.Info("deleted closed jobs", "count", n, "cutoff", cutoff)
	return n, nil
}
