package acquire

import "strings"

// matchesNotFound reports whether the page body contains any of the
// jurisdiction's "no results" phrases. Parsers apply their own structural
// checks on top; this catches the plain-text variants shared across sites.
func matchesNotFound(body string, markers []string) bool {
	if body == "" {
		return false
	}
	lower := strings.ToLower(body)
	for _, m := range markers {
		if m == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
