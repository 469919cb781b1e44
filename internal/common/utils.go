package common

import "strings"

// HasAny returns true if s contains any of the substrings, ignoring case.
func HasAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// NormalizePlace trims surrounding whitespace from a free-text place query.
func NormalizePlace(place string) string {
	return strings.TrimSpace(place)
}
