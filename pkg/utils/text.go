package utils

import "strings"

// LeadingTerms returns the first n whitespace-separated terms of text,
// rejoined with single spaces. Used to turn the opening of a response into
// a follow-up search query.
func LeadingTerms(text string, n int) string {
	if n <= 0 {
		return ""
	}
	fields := strings.Fields(text)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

// Truncate shortens s to at most max runes, appending an ellipsis when
// truncation happens.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
