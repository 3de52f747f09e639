// Package stem turns gloss-language text into search keywords.
package stem

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// Keywords splits text on anything that is not a letter or digit, lower-cases
// and stems each token, and returns the distinct stems in first-seen order.
// Stop words are kept as they are, so a query of just "the" still yields a keyword.
func Keywords(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		s := english.Stem(tok, false)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
