// Package text holds the normalization rules shared by retrieval and reranking.
package text

import (
	"strings"
	"unicode"
)

// Normalize lower-cases s, turns every non-alphanumeric rune into a space and
// collapses whitespace. "Chest-pain,  fever" -> "chest pain fever".
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// StripPunct lower-cases s and drops every rune that is neither alphanumeric nor
// whitespace, then collapses whitespace. "High-fever!" -> "highfever".
func StripPunct(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// Words splits normalized text into words.
func Words(s string) []string {
	return strings.Fields(Normalize(s))
}
