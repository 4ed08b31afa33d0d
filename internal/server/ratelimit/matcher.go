package ratelimit

import "strings"

// MatchRule returns the rule for method and path, or nil. Exact paths win over prefixes;
// among prefixes the longest wins.
func MatchRule(path, method string, rules []Rule) *Rule {
	var best *Rule
	for i := range rules {
		r := &rules[i]
		if r.Method != method {
			continue
		}
		if r.Path == path {
			return r
		}
		if strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			if best == nil || len(r.Path) > len(best.Path) {
				best = r
			}
		}
	}
	return best
}
