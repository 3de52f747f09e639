package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText prepares text for storage and comparison:
//   - trims leading/trailing whitespace
//   - composes to NFC
//   - converts to lowercase
//   - compresses multiple spaces into one
//
// Diacritics, hyphens, and apostrophes are preserved.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(norm.NFC.String(text))

	// Compress multiple spaces into one.
	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// circumflexReplacer maps the macron spelling convention onto the circumflex
// one used internally (SRO: ā ē ī ō -> â ê î ô).
var circumflexReplacer = strings.NewReplacer(
	"ā", "â", "ē", "ê", "ī", "î", "ō", "ô",
	"Ā", "Â", "Ē", "Ê", "Ī", "Î", "Ō", "Ô",
)

// ToCircumflex rewrites long vowels marked with a macron to their circumflex
// form. The input must already be NFC.
func ToCircumflex(s string) string {
	return circumflexReplacer.Replace(s)
}

// extraReplacements are letters with no decomposition that still fold for lookups.
var extraReplacements = strings.NewReplacer("ł", "l", "Ł", "L", "ø", "o", "Ø", "O")

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripDiacritics removes combining marks (â -> a, é -> e) and folds ł and ø.
// Case is preserved.
func StripDiacritics(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return extraReplacements.Replace(out)
}

// FoldForSearch lowercases and strips diacritics, for approximate keyword lookups.
func FoldForSearch(s string) string {
	return strings.ToLower(StripDiacritics(s))
}
