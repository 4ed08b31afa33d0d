package pipeline

import (
	"context"
	"time"
)

// Pacing bounds the request rate against third-party sites.
type Pacing struct {
	// SourceDelay separates consecutive listing URLs.
	SourceDelay time.Duration
	// BatchSize and BatchDelay pause after every BatchSize candidates within a source.
	BatchSize  int
	BatchDelay time.Duration
	// PageDelay separates API pages for one keyword.
	PageDelay time.Duration
	// KeywordDelay separates consecutive API keywords.
	KeywordDelay time.Duration
}

// DefaultPacing returns the delays used against live sites.
func DefaultPacing() Pacing {
	return Pacing{
		SourceDelay:  2 * time.Second,
		BatchSize:    10,
		BatchDelay:   time.Second,
		PageDelay:    2 * time.Second,
		KeywordDelay: 3 * time.Second,
	}
}

// batchPause reports whether a pause is due before candidate i.
func (p Pacing) batchPause(i int) bool {
	return p.BatchSize > 0 && i > 0 && i%p.BatchSize == 0
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
