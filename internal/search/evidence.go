package search

import "github.com/heartmarshall/morphodict-backend/internal/domain"

// MatchKind names the strategy that produced a piece of evidence.
type MatchKind int

const (
	MatchTargetLanguageKeyword MatchKind = iota + 1
	MatchSourceLanguage
	MatchSynthetic
	MatchSourceLanguageKeyword
	MatchPreverb
)

var matchKindNames = map[MatchKind]string{
	MatchTargetLanguageKeyword: "target_language_keyword",
	MatchSourceLanguage:        "source_language",
	MatchSynthetic:             "synthetic",
	MatchSourceLanguageKeyword: "source_language_keyword",
	MatchPreverb:               "preverb",
}

func (k MatchKind) String() string {
	if name, ok := matchKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Evidence explains why a result matched. The variant set is closed: only the
// types in this file implement it.
type Evidence interface {
	Kind() MatchKind
	// Distance returns the edit distance to the query, if the strategy computed one.
	Distance() (float64, bool)
	evidence()
}

// TargetLanguageKeywordMatch: the wordform is glossed by a stemmed query keyword.
type TargetLanguageKeywordMatch struct {
	Keyword string
}

func (TargetLanguageKeywordMatch) Kind() MatchKind           { return MatchTargetLanguageKeyword }
func (TargetLanguageKeywordMatch) Distance() (float64, bool) { return 0, false }
func (TargetLanguageKeywordMatch) evidence()                 {}

// SourceLanguageMatch: a stored wordform carries an analysis of the query.
type SourceLanguageMatch struct {
	Analysis     domain.Analysis
	EditDistance float64
}

func (SourceLanguageMatch) Kind() MatchKind             { return MatchSourceLanguage }
func (m SourceLanguageMatch) Distance() (float64, bool) { return m.EditDistance, true }
func (SourceLanguageMatch) evidence()                   {}

// SyntheticMatch: the wordform was generated from an analysis of the query
// that no stored wordform carries, and attached to its lemma as is.
type SyntheticMatch struct {
	Analysis     domain.Analysis
	EditDistance float64
}

func (SyntheticMatch) Kind() MatchKind             { return MatchSynthetic }
func (m SyntheticMatch) Distance() (float64, bool) { return m.EditDistance, true }
func (SyntheticMatch) evidence()                   {}

// SourceLanguageKeywordMatch: the wordform is indexed by the query text or its
// diacritic-stripped form.
type SourceLanguageKeywordMatch struct {
	Keyword      string
	EditDistance float64
}

func (SourceLanguageKeywordMatch) Kind() MatchKind             { return MatchSourceLanguageKeyword }
func (m SourceLanguageKeywordMatch) Distance() (float64, bool) { return m.EditDistance, true }
func (SourceLanguageKeywordMatch) evidence()                   {}

// PreverbMatch: the query names a preverb.
type PreverbMatch struct {
	Text         string
	EditDistance float64
}

func (PreverbMatch) Kind() MatchKind             { return MatchPreverb }
func (m PreverbMatch) Distance() (float64, bool) { return m.EditDistance, true }
func (PreverbMatch) evidence()                   {}
