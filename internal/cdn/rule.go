package cdn

import "strings"

// PathRule is one configured exclusion: either an exact path or, when the
// original string ended in '*', a prefix match on everything under it.
type PathRule struct {
	Prefix   string
	Wildcard bool
}

// ParsePathRule converts one configured exclusion string into a PathRule.
// A trailing '*' marks the rule as a prefix match.
func ParsePathRule(s string) PathRule {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "*") {
		return PathRule{Prefix: strings.TrimSuffix(s, "*"), Wildcard: true}
	}
	return PathRule{Prefix: s}
}

// ParsePathRules converts a configured exclusion list, dropping empties.
func ParsePathRules(list []string) []PathRule {
	var rules []PathRule
	for _, s := range list {
		r := ParsePathRule(s)
		if r.Prefix != "" {
			rules = append(rules, r)
		}
	}
	return rules
}

// Matches reports whether path falls under the rule.
func (r PathRule) Matches(path string) bool {
	if r.Wildcard {
		return strings.HasPrefix(path, r.Prefix)
	}
	return path == r.Prefix
}

// IsExcludedPath reports whether any rule matches path. Evaluation stops at
// the first match; the result is order-independent (boolean OR).
func IsExcludedPath(path string, rules []PathRule) bool {
	for _, r := range rules {
		if r.Matches(path) {
			return true
		}
	}
	return false
}
