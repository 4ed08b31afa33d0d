// Package discovery locates job posting candidates on a listing page.
//
// Patterns are tried in a fixed order and the first pattern with any match wins; results of
// different patterns are never combined. When no pattern matches, anchors that look like
// posting links are used instead.
package discovery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/job-scraper/internal/fetch"
)

// DefaultMaxCandidates caps how many candidates from one source are processed.
const DefaultMaxCandidates = 100

// minAnchorText is the visible-text length an anchor must exceed to count as a candidate.
const minAnchorText = 10

// Pattern selects candidate nodes by tag name and a class-token regex.
type Pattern struct {
	Tag   string
	Class *regexp.Regexp
}

// DefaultPatterns returns the listing patterns in priority order.
func DefaultPatterns() []Pattern {
	card := `(?i)job[-_]?(listing|card|item|post)`
	return []Pattern{
		{Tag: "div", Class: regexp.MustCompile(card)},
		{Tag: "li", Class: regexp.MustCompile(card)},
		{Tag: "tr", Class: regexp.MustCompile(`(?i)job[-_]?row`)},
		{Tag: "article", Class: regexp.MustCompile(`(?i)(job|position|vacancy)`)},
		{Tag: "li", Class: regexp.MustCompile(`(?i)usajobs`)},
		{Tag: "div", Class: regexp.MustCompile(`(?i)(career|position)[-_]?posting`)},
	}
}

var anchorHrefPattern = regexp.MustCompile(`(?i)(job|career|position)`)

// Discoverer finds candidate nodes in a parsed listing page. It is read-only after construction.
type Discoverer struct {
	patterns []Pattern
}

// New creates a Discoverer. A nil or empty pattern list selects DefaultPatterns.
func New(patterns []Pattern) *Discoverer {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return &Discoverer{patterns: append([]Pattern(nil), patterns...)}
}

// Result describes what was discovered and how.
type Result struct {
	Candidates []*goquery.Selection
	// Pattern is the index of the winning pattern, or -1 for the anchor fallback or no match.
	Pattern int
}

// Find returns the candidate nodes of doc in document order.
func (d *Discoverer) Find(doc *goquery.Document) Result {
	for i, p := range d.patterns {
		matched := doc.Find(p.Tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return fetch.HasClass(s, p.Class)
		})
		if matched.Length() > 0 {
			return Result{Candidates: split(matched), Pattern: i}
		}
	}

	anchors := doc.Find("a[href]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !anchorHrefPattern.MatchString(href) {
			return false
		}
		return len([]rune(strings.TrimSpace(fetch.VisibleText(s)))) > minAnchorText
	})
	return Result{Candidates: split(anchors), Pattern: -1}
}

// Cap truncates candidates to at most max entries. A non-positive max disables the cap.
func Cap(candidates []*goquery.Selection, max int) []*goquery.Selection {
	if max > 0 && len(candidates) > max {
		return candidates[:max]
	}
	return candidates
}

func split(sel *goquery.Selection) []*goquery.Selection {
	out := make([]*goquery.Selection, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}
