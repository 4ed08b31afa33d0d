package pipeline

import (
	"fmt"

	"github.com/google/uuid"
)

// RunError is returned when a run transitions to failed. The run record has already been
// persisted when the caller sees it.
type RunError struct {
	RunID  uuid.UUID
	Target string
	Cause  error
}

func (e *RunError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("scrape run %s failed at %s: %v", e.RunID, e.Target, e.Cause)
	}
	return fmt.Sprintf("scrape run %s failed: %v", e.RunID, e.Cause)
}

func (e *RunError) Unwrap() error {
	return e.Cause
}
