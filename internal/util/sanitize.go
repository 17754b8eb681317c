package util

import (
	"strings"
	"unicode"
)

// HasHiddenRunes reports whether s carries control characters or invisible
// formatting runes. Such runes let two visually identical usernames coexist.
func HasHiddenRunes(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsControl(r) || isInvisibleUnicode(r)
	}) >= 0
}

// StripHiddenRunes removes every rune HasHiddenRunes would flag.
func StripHiddenRunes(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || isInvisibleUnicode(r) {
			return -1
		}
		return r
	}, s)
}

func isInvisibleUnicode(r rune) bool {
	switch r {
	case
		'\u200B', // zero-width space
		'\u200C', // zero-width non-joiner
		'\u200D', // zero-width joiner
		'\u2060', // word joiner
		'\uFEFF', // BOM
		'\uFFF9', '\uFFFA', '\uFFFB':
		return true
	}

	// Cf covers the bidi marks and the remaining invisible operators.
	return unicode.Is(unicode.Cf, r)
}
