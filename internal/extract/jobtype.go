package extract

import (
	"strings"

	"github.com/jonathan/job-scraper/internal/taxonomy"
	"github.com/jonathan/job-scraper/internal/types"
)

// JobTypePolicy decides the job type of a posting from its title and description.
type JobTypePolicy interface {
	Classify(title, description string) types.JobType
}

// KeywordPolicy matches job-type keywords as substrings of the combined title and description.
// The first type in table order with any match wins; the default is job.
type KeywordPolicy struct {
	categories []taxonomy.Category
}

// NewKeywordPolicy builds a KeywordPolicy from the taxonomy's job-type table.
func NewKeywordPolicy(tax taxonomy.Taxonomy) *KeywordPolicy {
	return &KeywordPolicy{categories: tax.Clone().JobTypes}
}

// Classify implements JobTypePolicy.
func (p *KeywordPolicy) Classify(title, description string) types.JobType {
	lower := strings.ToLower(title + " " + description)
	for _, c := range p.categories {
		jt := types.JobType(c.Name)
		if !jt.Valid() {
			continue
		}
		if containsAny(lower, c.Keywords) {
			return jt
		}
	}
	return types.JobTypeJob
}

// StrictPolicy only recognises internships and fellowships that say so explicitly, either in the
// title or in the opening of the description. Internship is checked before fellowship.
type StrictPolicy struct {
	rules taxonomy.StrictRules
}

// NewStrictPolicy builds a StrictPolicy from rules.
func NewStrictPolicy(rules taxonomy.StrictRules) *StrictPolicy {
	return &StrictPolicy{rules: taxonomy.Taxonomy{Strict: rules}.Clone().Strict}
}

// Classify implements JobTypePolicy.
func (p *StrictPolicy) Classify(title, description string) types.JobType {
	titleLower := strings.ToLower(title)
	lead := leadingRunes(strings.ToLower(description), p.rules.LeadWindow)

	if containsAny(titleLower, p.rules.InternshipTitle) || containsAny(lead, p.rules.InternshipLead) {
		return types.JobTypeInternship
	}
	if containsAny(titleLower, p.rules.FellowshipTitle) || containsAny(lead, p.rules.FellowshipLead) {
		return types.JobTypeFellowship
	}
	return types.JobTypeJob
}

func leadingRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
