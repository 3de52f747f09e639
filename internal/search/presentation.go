package search

import (
	"context"
	"fmt"
	"slices"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
)

// DefinitionSource loads definitions for many wordforms at once. The
// per-request dataloaders implement it.
type DefinitionSource interface {
	DefinitionsFor(ctx context.Context, wordformIDs []int64) (map[int64][]domain.Definition, error)
}

// PresentationResult is a ranked result ready for serialization.
type PresentationResult struct {
	WordformID  int64
	Text        string
	Analysis    string
	POS         string
	IsLemma     bool
	IsSynthetic bool

	// Lemma links to the lemma of the wordform (the wordform itself for lemmas).
	Lemma LemmaLink

	Definitions      []domain.Definition
	LemmaDefinitions []domain.Definition

	Score           float64
	MorphemeRanking *float64
	// Evidence is only filled in verbose mode.
	Evidence []Evidence
}

type presentOptions struct {
	defs        DefinitionSource
	includeAuto bool
	verbose     bool
}

func present(ctx context.Context, results []*Result, links map[int64]LemmaLink, opts presentOptions) ([]PresentationResult, error) {
	defs, err := loadDefinitions(ctx, opts.defs, results)
	if err != nil {
		return nil, err
	}

	out := make([]PresentationResult, 0, len(results))
	for _, res := range results {
		wf := res.Wordform
		lemma := wf.LemmaWordform()

		pr := PresentationResult{
			WordformID:  wf.ID,
			Text:        wf.Text,
			Analysis:    wf.SmushedAnalysis(),
			POS:         lemma.PartOfSpeech(),
			IsLemma:     wf.IsLemma,
			IsSynthetic: wf.IsSynthetic(),
			Lemma:       lemmaLink(lemma, links),
			Definitions: filterDefinitions(defs[wf.ID], opts.includeAuto),
		}
		if lemma != wf && !lemma.IsSynthetic() {
			pr.LemmaDefinitions = filterDefinitions(defs[lemma.ID], opts.includeAuto)
		}
		pr.Score, _ = res.Score()
		if v, ok := res.MorphemeRanking(); ok {
			pr.MorphemeRanking = &v
		}
		if opts.verbose {
			pr.Evidence = append([]Evidence(nil), res.Evidence...)
		}
		out = append(out, pr)
	}
	return out, nil
}

func lemmaLink(lemma *domain.Wordform, links map[int64]LemmaLink) LemmaLink {
	if link, ok := links[lemma.ID]; ok && !lemma.IsSynthetic() {
		return link
	}
	return LemmaLink{Text: lemma.Text}
}

func loadDefinitions(ctx context.Context, src DefinitionSource, results []*Result) (map[int64][]domain.Definition, error) {
	if src == nil {
		return nil, nil
	}

	var ids []int64
	seen := make(map[int64]struct{})
	add := func(id int64) {
		if id == 0 {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, res := range results {
		add(res.Wordform.ID)
		if lemma := res.Wordform.LemmaWordform(); lemma != res.Wordform {
			add(lemma.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	defs, err := src.DefinitionsFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	return defs, nil
}

func filterDefinitions(defs []domain.Definition, includeAuto bool) []domain.Definition {
	out := make([]domain.Definition, 0, len(defs))
	for _, d := range defs {
		if d.IsAutoTranslation() && !includeAuto {
			continue
		}
		out = append(out, d)
	}
	return out
}

// restrictToSources keeps results with at least one visible definition, of
// the wordform or of its lemma, citing one of sources. Order is preserved.
func restrictToSources(ctx context.Context, results []*Result, src DefinitionSource, sources []string, includeAuto bool) ([]*Result, error) {
	defs, err := loadDefinitions(ctx, src, results)
	if err != nil {
		return nil, err
	}

	cites := func(id int64) bool {
		for _, d := range filterDefinitions(defs[id], includeAuto) {
			for _, s := range d.SourceIDs {
				if slices.Contains(sources, s) {
					return true
				}
			}
		}
		return false
	}

	out := make([]*Result, 0, len(results))
	for _, res := range results {
		wf := res.Wordform
		lemma := wf.LemmaWordform()
		if (wf.ID != 0 && cites(wf.ID)) || (lemma != wf && lemma.ID != 0 && cites(lemma.ID)) {
			out = append(out, res)
		}
	}
	return out, nil
}
