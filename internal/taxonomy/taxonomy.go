// Package taxonomy holds the keyword tables that drive classification and skill extraction.
//
// Tables are plain values. Ordered slices carry priority: when a classifier picks a single
// winner (job type), the first matching category in declared order wins.
package taxonomy

// Category is a named group of lower-case keywords.
type Category struct {
	Name     string
	Keywords []string

	// UpperMaxLen upper-cases the display label of keywords no longer than this. Zero disables it.
	UpperMaxLen int
	// Upper lists keywords whose display label is always upper-cased.
	Upper []string
}

// StrictRules configure the strict job-type policy used for structured API postings.
type StrictRules struct {
	InternshipTitle []string
	InternshipLead  []string
	FellowshipTitle []string
	FellowshipLead  []string
	// LeadWindow is the number of leading description runes searched for lead phrases.
	LeadWindow int
}

// Taxonomy is the full set of keyword tables for one ingestion path.
type Taxonomy struct {
	Name            string
	JobTypes        []Category
	TechnicalSkills []Category
	SoftSkills      []string
	Sectors         []Category
	WorkFormats     []Category
	DefaultSector   string
	Strict          StrictRules
}

// Clone returns a deep copy so callers can hold the tables without sharing backing arrays.
func (t Taxonomy) Clone() Taxonomy {
	out := t
	out.JobTypes = cloneCategories(t.JobTypes)
	out.TechnicalSkills = cloneCategories(t.TechnicalSkills)
	out.SoftSkills = cloneStrings(t.SoftSkills)
	out.Sectors = cloneCategories(t.Sectors)
	out.WorkFormats = cloneCategories(t.WorkFormats)
	out.Strict = StrictRules{
		InternshipTitle: cloneStrings(t.Strict.InternshipTitle),
		InternshipLead:  cloneStrings(t.Strict.InternshipLead),
		FellowshipTitle: cloneStrings(t.Strict.FellowshipTitle),
		FellowshipLead:  cloneStrings(t.Strict.FellowshipLead),
		LeadWindow:      t.Strict.LeadWindow,
	}
	return out
}

// Find returns the category with the given name from cats.
func Find(cats []Category, name string) (Category, bool) {
	for _, c := range cats {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

func cloneCategories(in []Category) []Category {
	if in == nil {
		return nil
	}
	out := make([]Category, len(in))
	for i, c := range in {
		out[i] = Category{
			Name:        c.Name,
			Keywords:    cloneStrings(c.Keywords),
			UpperMaxLen: c.UpperMaxLen,
			Upper:       cloneStrings(c.Upper),
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
