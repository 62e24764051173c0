package util

import (
	"strings"
	"unicode"
)

// SanitizeString trims surrounding whitespace and drops control characters.
func SanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
