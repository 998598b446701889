package grading

import (
	"strings"
	"unicode"
)

// normalize lowercases a free-text answer, drops punctuation and collapses
// whitespace, so "The Answer!" and "the  answer" compare equal.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
