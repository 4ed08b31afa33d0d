package extract

import (
	"regexp"
	"strings"
)

// wholeWord compiles a matcher for kw against lower-cased text. Boundaries are any character
// outside [a-z0-9_], so keywords ending in symbols ("c++", "c#") still match.
func wholeWord(kw string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^a-z0-9_])` + regexp.QuoteMeta(strings.ToLower(kw)) + `(?:$|[^a-z0-9_])`)
}

// containsAny reports whether lower contains any of the keywords as a substring.
func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
