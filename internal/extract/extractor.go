// Package extract derives structured attributes (locations, work format, skills, sectors, job type)
// from free text using keyword tables. Extraction is heuristic and never fails: malformed or empty
// input yields the documented defaults.
package extract

import (
	"github.com/jonathan/job-scraper/internal/taxonomy"
	"github.com/jonathan/job-scraper/internal/types"
)

// Extractor applies one taxonomy and one job-type policy. It is read-only after construction and
// safe for concurrent use.
type Extractor struct {
	tax    taxonomy.Taxonomy
	policy JobTypePolicy
	skills []skillCategory
	soft   []skillMatcher
}

// New builds an Extractor over a private copy of tax. A nil policy selects KeywordPolicy over
// the taxonomy's job-type table.
func New(tax taxonomy.Taxonomy, policy JobTypePolicy) *Extractor {
	tax = tax.Clone()
	if policy == nil {
		policy = NewKeywordPolicy(tax)
	}
	return &Extractor{
		tax:    tax,
		policy: policy,
		skills: compileSkillCategories(tax.TechnicalSkills),
		soft:   compileSoftSkills(tax.SoftSkills),
	}
}

// NewGeneric returns the extractor used for postings scraped from career pages.
func NewGeneric() *Extractor {
	tax := taxonomy.Generic()
	return New(tax, NewKeywordPolicy(tax))
}

// NewFederal returns the extractor used for structured API postings.
func NewFederal() *Extractor {
	tax := taxonomy.Federal()
	return New(tax, NewStrictPolicy(tax.Strict))
}

// Taxonomy returns a copy of the tables this extractor uses.
func (e *Extractor) Taxonomy() taxonomy.Taxonomy {
	return e.tax.Clone()
}

// JobType classifies a posting with the configured policy.
func (e *Extractor) JobType(title, description string) types.JobType {
	return e.policy.Classify(title, description)
}
