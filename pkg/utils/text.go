// Package utils provides shared text and logging helpers.
package utils

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Truncate returns s cut to at most maxRunes runes, with "..." appended if
// it was cut. A maxRunes of 0 or less returns s unchanged.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

// CollapseSpace replaces every run of whitespace with a single space and trims the ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NFC composes s to Unicode normalization form C. Bengali nukta letters
// (য় ড় ঢ়) are composition exclusions, so their precomposed code points come
// out decomposed and match text typed either way.
func NFC(s string) string {
	return norm.NFC.String(s)
}
