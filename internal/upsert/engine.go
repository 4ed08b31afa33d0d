// Package upsert persists draft records keyed on their apply link under an explicit conflict
// policy.
package upsert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jonathan/job-scraper/internal/types"
)

// Store is the persistence surface the engine needs.
type Store interface {
	// FindJobByApplyLink returns nil, nil when no record has the link.
	FindJobByApplyLink(ctx context.Context, applyLink string) (*types.JobRecord, error)
	// InsertJob stores rec and fills its ID and timestamps. A colliding apply link yields
	// types.ErrDuplicateApplyLink.
	InsertJob(ctx context.Context, rec *types.JobRecord) error
	UpdateJobClosed(ctx context.Context, id uuid.UUID, closed bool) error
}

// Policy decides what happens when a draft's apply link already exists.
type Policy int

const (
	// ReconcileClosedFlag updates the stored closed flag when it differs from the draft.
	ReconcileClosedFlag Policy = iota
	// SkipOnExisting leaves existing records untouched.
	SkipOnExisting
)

// Policy names used in configuration.
const (
	PolicyNameReconcile = "reconcile_closed_flag"
	PolicyNameSkip      = "skip_on_existing"
)

func (p Policy) String() string {
	switch p {
	case ReconcileClosedFlag:
		return PolicyNameReconcile
	case SkipOnExisting:
		return PolicyNameSkip
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy converts a configuration name into a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case PolicyNameReconcile:
		return ReconcileClosedFlag, nil
	case PolicyNameSkip:
		return SkipOnExisting, nil
	default:
		return 0, fmt.Errorf("unknown upsert policy %q (want %s or %s)", name, PolicyNameReconcile, PolicyNameSkip)
	}
}

// Outcome is the result of one upsert.
type Outcome string

// Outcome constants
const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeError     Outcome = "error"
)

// ValidationError reports a draft that violates record invariants. It is counted per record and
// never aborts a run.
type ValidationError struct {
	ApplyLink string
	Cause     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid job record %q: %v", e.ApplyLink, e.Cause)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// CreatedHook runs after a new open record is inserted. Its errors are logged, not returned.
type CreatedHook func(ctx context.Context, rec *types.JobRecord) error

// Engine applies one Policy against a Store.
type Engine struct {
	store     Store
	policy    Policy
	onCreated CreatedHook
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCreatedHook registers a hook for newly created open records.
func WithCreatedHook(hook CreatedHook) Option {
	return func(e *Engine) { e.onCreated = hook }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine.
func New(store Store, policy Policy, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		policy: policy,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the engine's conflict policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Upsert validates draft and persists it. Invalid drafts yield OutcomeError with a
// *ValidationError; store failures yield OutcomeError with the wrapped store error.
func (e *Engine) Upsert(ctx context.Context, draft *types.JobRecord) (Outcome, error) {
	if draft == nil {
		return OutcomeError, &ValidationError{Cause: errors.New("nil record")}
	}
	if err := draft.Validate(); err != nil {
		return OutcomeError, &ValidationError{ApplyLink: draft.ApplyLink, Cause: err}
	}

	existing, err := e.store.FindJobByApplyLink(ctx, draft.ApplyLink)
	if err != nil {
		return OutcomeError, fmt.Errorf("failed to look up job: %w", err)
	}

	if existing == nil {
		err := e.store.InsertJob(ctx, draft)
		switch {
		case err == nil:
			e.created(ctx, draft)
			return OutcomeCreated, nil
		case errors.Is(err, types.ErrDuplicateApplyLink):
			existing, err = e.store.FindJobByApplyLink(ctx, draft.ApplyLink)
			if err != nil {
				return OutcomeError, fmt.Errorf("failed to look up job after conflict: %w", err)
			}
			if existing == nil {
				return OutcomeError, fmt.Errorf("job %q vanished after insert conflict", draft.ApplyLink)
			}
		default:
			return OutcomeError, fmt.Errorf("failed to insert job: %w", err)
		}
	}

	if e.policy == SkipOnExisting {
		return OutcomeSkipped, nil
	}
	if existing.Closed == draft.Closed {
		return OutcomeUnchanged, nil
	}
	if err := e.store.UpdateJobClosed(ctx, existing.ID, draft.Closed); err != nil {
		return OutcomeError, fmt.Errorf("failed to update job: %w", err)
	}
	return OutcomeUpdated, nil
}

func (e *Engine) created(ctx context.Context, rec *types.JobRecord) {
	if e.onCreated == nil || rec.Closed {
		return
	}
	if err := e.onCreated(ctx, rec); err != nil {
		e.logger.Warn("post-create hook failed", "apply_link", rec.ApplyLink, "error", err)
	}
}
