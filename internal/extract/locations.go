package extract

import (
	"regexp"
	"strings"

	"github.com/jonathan/job-scraper/internal/types"
)

var (
	// City is one to three capitalized words; state is exactly two upper-case letters.
	cityStatePattern = regexp.MustCompile(`\b([A-Z][A-Za-z.'-]*(?:[ \t]+[A-Z][A-Za-z.'-]*){0,2}),[ \t]*([A-Z]{2})\b`)
	remotePattern    = regexp.MustCompile(`(?i)\bremote\b`)
	hybridPattern    = regexp.MustCompile(`(?i)\bhybrid\b`)
)

// Locations returns the "City, ST" mentions in text, followed by "Remote" and "Hybrid" when
// those words appear. The result is deduplicated in first-seen order and never empty.
func Locations(text string) []string {
	var found []string
	for _, m := range cityStatePattern.FindAllStringSubmatch(text, -1) {
		city := strings.Join(strings.Fields(m[1]), " ")
		found = append(found, city+", "+m[2])
	}
	if remotePattern.MatchString(text) {
		found = append(found, "Remote")
	}
	if hybridPattern.MatchString(text) {
		found = append(found, "Hybrid")
	}

	found = types.UniqueStrings(found)
	if len(found) == 0 {
		return []string{types.DefaultLocation}
	}
	return found
}
