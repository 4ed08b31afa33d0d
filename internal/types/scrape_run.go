package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a ScrapeRun.
type RunStatus string

// RunStatus constants
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ErrRunTerminal is returned when a finished run is modified.
var ErrRunTerminal = errors.New("scrape run already finished")

// ScrapeRun records the provenance of one orchestrated run.
type ScrapeRun struct {
	ID           uuid.UUID  `json:"id"`
	Status       RunStatus  `json:"status"`
	Targets      []string   `json:"targets"`
	JobsFound    int        `json:"jobs_found"`
	JobsAdded    int        `json:"jobs_added"`
	JobsUpdated  int        `json:"jobs_updated"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// NewScrapeRun starts a run over the given sources or keywords.
func NewScrapeRun(targets []string, now time.Time) *ScrapeRun {
	return &ScrapeRun{
		ID:        uuid.New(),
		Status:    RunStatusRunning,
		Targets:   append([]string(nil), targets...),
		StartedAt: now,
	}
}

// IsTerminal reports whether the run has completed or failed.
func (r *ScrapeRun) IsTerminal() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}

// Add accumulates counters. Counters never decrease.
func (r *ScrapeRun) Add(found, added, updated int) error {
	if r.IsTerminal() {
		return ErrRunTerminal
	}
	if found < 0 || added < 0 || updated < 0 {
		return fmt.Errorf("negative counter delta (found=%d added=%d updated=%d)", found, added, updated)
	}
	r.JobsFound += found
	r.JobsAdded += added
	r.JobsUpdated += updated
	return nil
}

// Complete marks the run as completed.
func (r *ScrapeRun) Complete(now time.Time) error {
	if r.IsTerminal() {
		return ErrRunTerminal
	}
	r.Status = RunStatusCompleted
	r.CompletedAt = &now
	return nil
}

// Fail marks the run as failed and records the error text.
func (r *ScrapeRun) Fail(cause error, now time.Time) error {
	if r.IsTerminal() {
		return ErrRunTerminal
	}
	r.Status = RunStatusFailed
	if cause != nil {
		r.ErrorMessage = cause.Error()
	}
	r.CompletedAt = &now
	return nil
}
