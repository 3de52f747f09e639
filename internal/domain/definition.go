package domain

import (
	"fmt"
	"slices"
)

// Definition is one gloss of a wordform, citing one or more dictionary sources.
type Definition struct {
	ID                      int64
	WordformID              int64
	Text                    string
	SourceIDs               []string
	AutoTranslationSourceID *int64
}

// IsAutoTranslation reports whether the definition was generated from another definition.
func (d Definition) IsAutoTranslation() bool {
	return d.AutoTranslationSourceID != nil
}

// SortedSourceIDs returns the distinct cited source abbreviations in order.
func (d Definition) SortedSourceIDs() []string {
	ids := slices.Clone(d.SourceIDs)
	slices.Sort(ids)
	return slices.Compact(ids)
}

// DictionarySource is the bibliographic record a definition cites, e.g. CW for "Cree: Words".
type DictionarySource struct {
	Abbrv     string
	Title     string
	Author    string
	Editor    string
	Year      *int
	Publisher string
	City      string
}

// Citation renders a short citation: [CW]: “Cree: Words” (Ed. Arok Wolvengrey).
func (s DictionarySource) Citation() string {
	var authorOrEditor string
	if s.Author != "" {
		authorOrEditor += " by " + s.Author
	}
	if s.Editor != "" {
		authorOrEditor += " (Ed. " + s.Editor + ")"
	}
	return fmt.Sprintf("[%s]: “%s”%s", s.Abbrv, s.Title, authorOrEditor)
}
