package search

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
	"github.com/heartmarshall/morphodict-backend/internal/morph"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockLexicon struct {
	FindByAnalysisFunc      func(ctx context.Context, a domain.Analysis) ([]domain.Wordform, error)
	FindByTextFunc          func(ctx context.Context, text string, lemmasOnly bool) ([]domain.Wordform, error)
	FindByTargetKeywordFunc func(ctx context.Context, keyword string) ([]domain.Wordform, error)
	FindBySourceKeywordFunc func(ctx context.Context, texts ...string) ([]domain.SourceKeywordMatch, error)
	FindPreverbFunc         func(ctx context.Context, text string) ([]domain.Wordform, error)
	MorphemeRankingFunc     func(morpheme string) (float64, bool)
}

func (m *mockLexicon) FindByAnalysis(ctx context.Context, a domain.Analysis) ([]domain.Wordform, error) {
	if m.FindByAnalysisFunc != nil {
		return m.FindByAnalysisFunc(ctx, a)
	}
	return nil, nil
}

func (m *mockLexicon) FindByText(ctx context.Context, text string, lemmasOnly bool) ([]domain.Wordform, error) {
	if m.FindByTextFunc != nil {
		return m.FindByTextFunc(ctx, text, lemmasOnly)
	}
	return nil, nil
}

func (m *mockLexicon) FindByTargetKeyword(ctx context.Context, keyword string) ([]domain.Wordform, error) {
	if m.FindByTargetKeywordFunc != nil {
		return m.FindByTargetKeywordFunc(ctx, keyword)
	}
	return nil, nil
}

func (m *mockLexicon) FindBySourceKeyword(ctx context.Context, texts ...string) ([]domain.SourceKeywordMatch, error) {
	if m.FindBySourceKeywordFunc != nil {
		return m.FindBySourceKeywordFunc(ctx, texts...)
	}
	return nil, nil
}

func (m *mockLexicon) FindPreverb(ctx context.Context, text string) ([]domain.Wordform, error) {
	if m.FindPreverbFunc != nil {
		return m.FindPreverbFunc(ctx, text)
	}
	return nil, nil
}

func (m *mockLexicon) MorphemeRanking(morpheme string) (float64, bool) {
	if m.MorphemeRankingFunc != nil {
		return m.MorphemeRankingFunc(morpheme)
	}
	return 0, false
}

type mockDefinitionSource struct {
	DefinitionsForFunc func(ctx context.Context, ids []int64) (map[int64][]domain.Definition, error)
}

func (m *mockDefinitionSource) DefinitionsFor(ctx context.Context, ids []int64) (map[int64][]domain.Definition, error) {
	if m.DefinitionsForFunc != nil {
		return m.DefinitionsForFunc(ctx, ids)
	}
	return nil, nil
}

// ===========================================================================
// Fixtures
// ===========================================================================

const fixtureTable = `acâhkos	acâhkos+N+A+Sg
acâhkosak	acâhkos+N+A+Pl
acâhkosa	acâhkos+N+A+Obv
atchakosuk	acâhkos+N+A+Pl	variant
minôs	minôs+N+A+Sg
minôs	minôs+N+I+Sg
minôsak	minôs+N+A+Pl
nipâw	nipâw+V+AI+Ind+3Sg
nipâwak	nipâw+V+AI+Ind+3Pl
mahihkan	mahihkan+N+A+Obv
`

func newFixtureOracle(t *testing.T) *morph.Table {
	t.Helper()
	tbl, err := morph.ReadTable(strings.NewReader(fixtureTable))
	require.NoError(t, err)
	return tbl
}

func analysisPtr(s string) *domain.Analysis {
	a := domain.MustParseAnalysis(s)
	return &a
}

func lemmaWordform(id int64, text, analysis, pos string) domain.Wordform {
	return domain.Wordform{
		ID:              id,
		Text:            text,
		Analysis:        analysisPtr(analysis),
		IsLemma:         true,
		LemmaID:         id,
		Slug:            text,
		LinguistInfoPOS: pos,
	}
}

type fixture struct {
	wordforms      []domain.Wordform
	targetKeywords map[string][]int64
	sourceKeywords map[string][]int64
	preverbs       map[string][]int64
	rankings       map[string]float64
}

func newFixture() *fixture {
	acahkos := lemmaWordform(1, "acâhkos", "acâhkos+N+A+Sg", "NA-1")
	acahkosa := domain.Wordform{
		ID: 2, Text: "acâhkosa", Analysis: analysisPtr("acâhkos+N+A+Obv"),
		LemmaID: 1, Lemma: &acahkos, Slug: "acâhkosa",
	}
	return &fixture{
		wordforms: []domain.Wordform{
			acahkos,
			acahkosa,
			lemmaWordform(3, "minôs", "minôs+N+A+Sg", "NA-1"),
			lemmaWordform(4, "minôs", "minôs+N+I+Sg", "NI-1"),
			lemmaWordform(5, "nipâw", "nipâw+V+AI+Ind+3Sg", "VAI-v"),
			lemmaWordform(6, "ê-", "ê+IPV", "IPV"),
			lemmaWordform(7, "otinam", "otinam+V+TI+Ind+3Sg", "VTI-1"),
		},
		targetKeywords: map[string][]int64{
			"star":  {1},
			"cat":   {3},
			"berri": {4},
			"sleep": {5},
			"catch": {7},
			"take":  {7},
		},
		sourceKeywords: map[string][]int64{
			"acâhkos": {1},
			"acahkos": {1},
			"minôs":   {3, 4},
			"minos":   {3, 4},
			"nipâw":   {5},
			"nipaw":   {5},
		},
		preverbs: map[string][]int64{"e": {6}},
		rankings: map[string]float64{"minôs": 9.5, "nipâw": 8.1},
	}
}

func (f *fixture) byID(id int64) domain.Wordform {
	for _, wf := range f.wordforms {
		if wf.ID == id {
			return wf
		}
	}
	panic("fixture: no wordform")
}

func (f *fixture) byIDs(ids []int64) []domain.Wordform {
	out := make([]domain.Wordform, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.byID(id))
	}
	return out
}

// lexicon returns a mock backed by the fixture; callers may override funcs.
func (f *fixture) lexicon() *mockLexicon {
	return &mockLexicon{
		FindByAnalysisFunc: func(_ context.Context, a domain.Analysis) ([]domain.Wordform, error) {
			var out []domain.Wordform
			for _, wf := range f.wordforms {
				if wf.Analysis != nil && wf.Analysis.Equal(a) {
					out = append(out, wf)
				}
			}
			return out, nil
		},
		FindByTextFunc: func(_ context.Context, text string, lemmasOnly bool) ([]domain.Wordform, error) {
			var out []domain.Wordform
			for _, wf := range f.wordforms {
				if wf.Text == text && (!lemmasOnly || wf.IsLemma) {
					out = append(out, wf)
				}
			}
			return out, nil
		},
		FindByTargetKeywordFunc: func(_ context.Context, keyword string) ([]domain.Wordform, error) {
			return f.byIDs(f.targetKeywords[strings.ToLower(keyword)]), nil
		},
		FindBySourceKeywordFunc: func(_ context.Context, texts ...string) ([]domain.SourceKeywordMatch, error) {
			var out []domain.SourceKeywordMatch
			for _, text := range texts {
				for _, id := range f.sourceKeywords[text] {
					out = append(out, domain.SourceKeywordMatch{Keyword: text, Wordform: f.byID(id)})
				}
			}
			return out, nil
		},
		FindPreverbFunc: func(_ context.Context, text string) ([]domain.Wordform, error) {
			key := domain.StripDiacritics(strings.TrimSuffix(text, "-"))
			return f.byIDs(f.preverbs[key]), nil
		},
		MorphemeRankingFunc: func(morpheme string) (float64, bool) {
			v, ok := f.rankings[morpheme]
			return v, ok
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
