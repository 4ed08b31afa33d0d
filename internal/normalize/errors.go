// Package normalize turns raw postings (listing page candidates or API items) into JobRecords.
package normalize

import "fmt"

// RejectError signals that a candidate is not a usable posting. It is not a failure: the
// orchestrator counts it and moves on.
type RejectError struct {
	Source string
	Reason string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("candidate rejected (%s): %s", e.Source, e.Reason)
}

// Reject reasons.
const (
	ReasonNoTitle         = "no title"
	ReasonNoLink          = "no apply link"
	ReasonBadLink         = "apply link is not an http(s) URL"
	ReasonInvalidBaseURL  = "invalid base URL"
	ReasonMissingPosition = "missing position title or URI"
)
