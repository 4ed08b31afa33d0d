package extract

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonathan/job-scraper/internal/taxonomy"
)

type skillMatcher struct {
	pattern *regexp.Regexp
	label   string
}

type skillCategory struct {
	name     string
	matchers []skillMatcher
}

func compileSkillCategories(cats []taxonomy.Category) []skillCategory {
	caser := cases.Title(language.English)
	out := make([]skillCategory, 0, len(cats))
	for _, c := range cats {
		sc := skillCategory{name: c.Name}
		for _, kw := range c.Keywords {
			sc.matchers = append(sc.matchers, skillMatcher{
				pattern: wholeWord(kw),
				label:   displayLabel(kw, c, caser),
			})
		}
		out = append(out, sc)
	}
	return out
}

func compileSoftSkills(keywords []string) []skillMatcher {
	caser := cases.Title(language.English)
	out := make([]skillMatcher, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, skillMatcher{pattern: wholeWord(kw), label: caser.String(kw)})
	}
	return out
}

// displayLabel title-cases kw unless the category asks for short acronyms to be upper-cased.
func displayLabel(kw string, c taxonomy.Category, caser cases.Caser) string {
	if slices.Contains(c.Upper, kw) || (c.UpperMaxLen > 0 && len(kw) <= c.UpperMaxLen) {
		return strings.ToUpper(kw)
	}
	return caser.String(kw)
}

// Skills returns technical skills grouped by category and the soft skills found in text.
// Categories without a match are omitted. Labels are deduplicated in table order.
func (e *Extractor) Skills(text string) (map[string][]string, []string) {
	lower := strings.ToLower(text)

	technical := make(map[string][]string)
	for _, c := range e.skills {
		var labels []string
		for _, m := range c.matchers {
			if m.pattern.MatchString(lower) && !slices.Contains(labels, m.label) {
				labels = append(labels, m.label)
			}
		}
		if len(labels) > 0 {
			technical[c.name] = labels
		}
	}

	var soft []string
	for _, m := range e.soft {
		if m.pattern.MatchString(lower) && !slices.Contains(soft, m.label) {
			soft = append(soft, m.label)
		}
	}
	return technical, soft
}
