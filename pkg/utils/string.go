package utils

import "strings"

// Truncate shortens s to at most maxLen runes, appending "..." when cut.
// Newlines are flattened so the result fits on a single line.
func Truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
