package pipeline

import "github.com/jonathan/job-scraper/internal/upsert"

// SourceStats counts what happened to one source (a listing URL or an API keyword).
type SourceStats struct {
	Source string `json:"source"`
	// Candidates is the number of listing nodes or API items considered after capping.
	Candidates int `json:"candidates"`
	// Found is the number of candidates that normalized into a record.
	Found     int `json:"found"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	// Rejected counts candidates that were not postings or could not be parsed.
	Rejected int `json:"rejected"`
	// Errors counts records that failed validation.
	Errors int `json:"errors"`
	// Error is set when the source itself could not be fetched.
	Error string `json:"error,omitempty"`
}

func (s *SourceStats) record(outcome upsert.Outcome) {
	switch outcome {
	case upsert.OutcomeCreated:
		s.Created++
	case upsert.OutcomeUpdated:
		s.Updated++
	case upsert.OutcomeUnchanged:
		s.Unchanged++
	case upsert.OutcomeSkipped:
		s.Skipped++
	case upsert.OutcomeError:
		s.Errors++
	}
}

// Summary is the result of one orchestrated run.
type Summary struct {
	Sources []SourceStats `json:"sources"`
}

// Totals sums the per-source counters.
func (s Summary) Totals() SourceStats {
	var t SourceStats
	for _, src := range s.Sources {
		t.Candidates += src.Candidates
		t.Found += src.Found
		t.Created += src.Created
		t.Updated += src.Updated
		t.Unchanged += src.Unchanged
		t.Skipped += src.Skipped
		t.Rejected += src.Rejected
		t.Errors += src.Errors
	}
	return t
}

// Failed returns the sources whose fetch failed.
func (s Summary) Failed() []SourceStats {
	var out []SourceStats
	for _, src := range s.Sources {
		if src.Error != "" {
			out = append(out, src)
		}
	}
	return out
}
