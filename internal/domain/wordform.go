package domain

import (
	"strconv"
	"strings"
)

// MaxWordformLength is the longest wordform or head (in runes) accepted on import.
const MaxWordformLength = 40

// WordformKey identifies a wordform for deduplication. A persisted wordform is
// keyed by its ID; a synthesized one (never stored) by its text, analysis and
// the lemma it was attached to, so homograph lemmas yield distinct results.
type WordformKey struct {
	ID       int64
	Text     string
	Analysis string
	LemmaID  int64
}

// IsPersisted reports whether the key refers to a stored wordform.
func (k WordformKey) IsPersisted() bool { return k.ID != 0 }

func (k WordformKey) String() string {
	if k.IsPersisted() {
		return "id:" + strconv.FormatInt(k.ID, 10)
	}
	s := "synthetic:" + k.Text + "|" + k.Analysis
	if k.LemmaID != 0 {
		s += "@" + strconv.FormatInt(k.LemmaID, 10)
	}
	return s
}

// Wordform is a lemma or one of its inflected forms.
// ID is zero for wordforms synthesized during a search.
type Wordform struct {
	ID               int64
	Text             string
	Analysis         *Analysis
	Paradigm         *string
	IsLemma          bool
	LemmaID          int64
	Lemma            *Wordform
	Slug             string
	LinguistInfoStem string
	LinguistInfoPOS  string
}

// Key returns the deduplication identity of the wordform.
func (w *Wordform) Key() WordformKey {
	if w.ID != 0 {
		return WordformKey{ID: w.ID}
	}
	k := WordformKey{Text: w.Text, LemmaID: w.LemmaID}
	if w.Analysis != nil {
		k.Analysis = w.Analysis.Smushed()
	}
	return k
}

// IsSynthetic reports whether the wordform exists only for the lifetime of a search.
func (w *Wordform) IsSynthetic() bool { return w.ID == 0 }

// SmushedAnalysis returns the smushed analysis or "" when the wordform has none.
func (w *Wordform) SmushedAnalysis() string {
	if w.Analysis == nil {
		return ""
	}
	return w.Analysis.Smushed()
}

// LemmaWordform returns the lemma of this wordform; a lemma (or a wordform
// whose lemma was not loaded) returns itself.
func (w *Wordform) LemmaWordform() *Wordform {
	if w.IsLemma || w.Lemma == nil {
		return w
	}
	return w.Lemma
}

// PartOfSpeech returns the part of the inflectional category before "-"
// (e.g. "NA-1" -> "NA"), falling back to the word class of the analysis.
func (w *Wordform) PartOfSpeech() string {
	pos, _, _ := strings.Cut(w.LinguistInfoPOS, "-")
	if pos = strings.TrimSpace(pos); pos != "" {
		return pos
	}
	if w.Analysis != nil {
		return w.Analysis.WordClass()
	}
	return ""
}

// SourceKeywordMatch is a source-language keyword row and the wordform it indexes.
type SourceKeywordMatch struct {
	Keyword  string
	Wordform Wordform
}
