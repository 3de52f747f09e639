package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/morphodict-backend/internal/config"
	"github.com/heartmarshall/morphodict-backend/internal/domain"
)

func defaultSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		RequestTimeout: time.Second,
		MaxResults:     50,
		VerboseAllowed: true,
		Preverbs:       true,
	}
}

func newTestService(t *testing.T, lex *mockLexicon, cfg config.SearchConfig) *Service {
	t.Helper()
	return NewService(testLogger(), lex, newFixtureOracle(t), cfg)
}

func autoID(id int64) *int64 { return &id }

func fixtureDefinitions() map[int64][]domain.Definition {
	return map[int64][]domain.Definition{
		1: {{ID: 10, WordformID: 1, Text: "star", SourceIDs: []string{"CW"}}},
		3: {
			{ID: 30, WordformID: 3, Text: "cat", SourceIDs: []string{"CW", "MD"}},
			{ID: 31, WordformID: 3, Text: "pussycat", SourceIDs: []string{"CW"}, AutoTranslationSourceID: autoID(30)},
		},
		4: {{ID: 40, WordformID: 4, Text: "berry", SourceIDs: []string{"MD"}}},
	}
}

func definitionSource(t *testing.T, requested *[]int64) *mockDefinitionSource {
	t.Helper()
	all := fixtureDefinitions()
	return &mockDefinitionSource{DefinitionsForFunc: func(_ context.Context, ids []int64) (map[int64][]domain.Definition, error) {
		if requested != nil {
			*requested = append(*requested, ids...)
		}
		out := make(map[int64][]domain.Definition, len(ids))
		for _, id := range ids {
			out[id] = all[id]
		}
		return out, nil
	}}
}

func TestService_Search_Homographs(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFixture().lexicon(), defaultSearchConfig())

	resp, err := svc.Search(context.Background(), "  Minôs ", Options{Definitions: definitionSource(t, nil)})
	require.NoError(t, err)

	assert.Equal(t, "minôs", resp.Query.Effective)
	assert.False(t, resp.Partial)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 2, resp.Total)

	na, ni := resp.Results[0], resp.Results[1]
	assert.Equal(t, LemmaLink{Text: "minôs", Param: domain.LemmaParamPOS, Value: "NA"}, na.Lemma)
	assert.Equal(t, LemmaLink{Text: "minôs", Param: domain.LemmaParamPOS, Value: "NI"}, ni.Lemma)
	assert.NotEqual(t, na.Lemma, ni.Lemma)

	require.Len(t, na.Definitions, 1, "auto-translated definitions are hidden by default")
	assert.Equal(t, "cat", na.Definitions[0].Text)
	assert.Empty(t, na.LemmaDefinitions)
	require.NotNil(t, na.MorphemeRanking)
	assert.InDelta(t, 9.5, *na.MorphemeRanking, 1e-9)
	assert.Nil(t, na.Evidence)
	assert.Nil(t, resp.VerboseMessages)
}

func TestService_Search_SyntheticShowsLemmaDefinitions(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFixture().lexicon(), defaultSearchConfig())

	var requested []int64
	resp, err := svc.Search(context.Background(), "atchakosuk", Options{Definitions: definitionSource(t, &requested)})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	res := resp.Results[0]
	assert.True(t, res.IsSynthetic)
	assert.Zero(t, res.WordformID)
	assert.Equal(t, "acâhkosak", res.Text)
	assert.Equal(t, "acâhkos+N+A+Pl", res.Analysis)
	assert.Equal(t, "NA", res.POS)
	assert.Equal(t, LemmaLink{Text: "acâhkos"}, res.Lemma)
	assert.Empty(t, res.Definitions)
	require.Len(t, res.LemmaDefinitions, 1)
	assert.Equal(t, "star", res.LemmaDefinitions[0].Text)
	assert.Equal(t, []int64{1}, requested)
}

func TestService_Search_AutoDefinitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		raw        string
		cfgDefault bool
		override   *bool
		want       int
	}{
		{name: "hidden by default", raw: "minôs", want: 1},
		{name: "config default", raw: "minôs", cfgDefault: true, want: 2},
		{name: "option override", raw: "minôs", override: ptr(true), want: 2},
		{name: "directive wins over option", raw: "auto:off minôs", override: ptr(true), want: 1},
		{name: "directive enables", raw: "auto:yes minôs", want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultSearchConfig()
			cfg.DefaultIncludeAutoDefinitions = tt.cfgDefault
			svc := newTestService(t, newFixture().lexicon(), cfg)

			resp, err := svc.Search(context.Background(), tt.raw, Options{
				Definitions:            definitionSource(t, nil),
				IncludeAutoDefinitions: tt.override,
			})
			require.NoError(t, err)
			require.NotEmpty(t, resp.Results)
			assert.Len(t, resp.Results[0].Definitions, tt.want)
			assert.Equal(t, tt.want == 2, resp.IncludeAutoDefinitions)
		})
	}
}

func TestService_Search_Verbose(t *testing.T) {
	t.Parallel()

	t.Run("directive", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t, newFixture().lexicon(), defaultSearchConfig())

		resp, err := svc.Search(context.Background(), "verbose:true cvd:exclusive minôs", Options{})
		require.NoError(t, err)
		require.NotEmpty(t, resp.Results)
		assert.NotEmpty(t, resp.Results[0].Evidence)
		assert.Contains(t, resp.VerboseMessages, "cvd mode exclusive is not available; using lookup strategies only")
	})

	t.Run("not allowed", func(t *testing.T) {
		t.Parallel()
		cfg := defaultSearchConfig()
		cfg.VerboseAllowed = false
		svc := newTestService(t, newFixture().lexicon(), cfg)

		resp, err := svc.Search(context.Background(), "verbose:true minôs", Options{Verbose: true})
		require.NoError(t, err)
		require.NotEmpty(t, resp.Results)
		assert.Nil(t, resp.Results[0].Evidence)
		assert.Nil(t, resp.VerboseMessages)
	})
}

func TestService_Search_EmptyQuery(t *testing.T) {
	t.Parallel()

	lex := &mockLexicon{FindByTextFunc: func(context.Context, string, bool) ([]domain.Wordform, error) {
		t.Error("unexpected lookup")
		return nil, nil
	}}
	svc := newTestService(t, lex, defaultSearchConfig())

	for _, raw := range []string{"", "   ", "verbose:true auto:no"} {
		resp, err := svc.Search(context.Background(), raw, Options{})
		require.NoError(t, err, raw)
		assert.False(t, resp.Query.IsValid())
		assert.Empty(t, resp.Results)
	}
}

func TestService_Search_MaxResults(t *testing.T) {
	t.Parallel()

	cfg := defaultSearchConfig()
	cfg.MaxResults = 1
	svc := newTestService(t, newFixture().lexicon(), cfg)

	resp, err := svc.Search(context.Background(), "minôs", Options{})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, 2, resp.Total)
	assert.Nil(t, resp.VerboseMessages)

	resp, err = svc.Search(context.Background(), "minôs", Options{Verbose: true})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Contains(t, resp.VerboseMessages, "truncated 2 results to 1")
}

func TestService_Search_Sources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		sources []string
		wantIDs []int64
		wantTxt []string
	}{
		{name: "both homographs cite MD", raw: "minôs", sources: []string{"MD"}, wantIDs: []int64{3, 4}},
		{name: "only the animate homograph cites CW", raw: "verbose:on minôs", sources: []string{"CW"}, wantIDs: []int64{3}},
		{name: "synthetic form kept through its lemma", raw: "atchakosuk", sources: []string{"CW"}, wantTxt: []string{"acâhkosak"}},
		{name: "synthetic form dropped", raw: "atchakosuk", sources: []string{"MD"}},
		{name: "unknown source", raw: "minôs", sources: []string{"XX"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t, newFixture().lexicon(), defaultSearchConfig())

			resp, err := svc.Search(context.Background(), tt.raw, Options{
				Definitions: definitionSource(t, nil),
				Sources:     tt.sources,
			})
			require.NoError(t, err)
			assert.Equal(t, len(resp.Results), resp.Total)

			var ids []int64
			var texts []string
			for _, res := range resp.Results {
				if res.IsSynthetic {
					texts = append(texts, res.Text)
					continue
				}
				ids = append(ids, res.WordformID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTxt, texts)
		})
	}
}

func TestService_Search_SourcesVerbose(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFixture().lexicon(), defaultSearchConfig())
	resp, err := svc.Search(context.Background(), "minôs", Options{
		Definitions: definitionSource(t, nil),
		Sources:     []string{"CW"},
		Verbose:     true,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.VerboseMessages, "dropped 1 results without definitions from CW")
}

func TestService_Search_SourcesNeedDefinitions(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFixture().lexicon(), defaultSearchConfig())
	_, err := svc.Search(context.Background(), "minôs", Options{Sources: []string{"CW"}})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Search_DeadlineReturnsPartialResults(t *testing.T) {
	t.Parallel()

	f := newFixture()
	lex := f.lexicon()
	lex.FindByAnalysisFunc = func(ctx context.Context, _ domain.Analysis) ([]domain.Wordform, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	lex.FindByTargetKeywordFunc = func(context.Context, string) ([]domain.Wordform, error) {
		return []domain.Wordform{f.byID(5)}, nil
	}

	cfg := defaultSearchConfig()
	cfg.RequestTimeout = 20 * time.Millisecond
	svc := newTestService(t, lex, cfg)

	resp, err := svc.Search(context.Background(), "nipâw", Options{})
	require.NoError(t, err)
	assert.True(t, resp.Partial)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(5), resp.Results[0].WordformID)
}

func TestService_Search_DefinitionError(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFixture().lexicon(), defaultSearchConfig())
	defs := &mockDefinitionSource{DefinitionsForFunc: func(context.Context, []int64) (map[int64][]domain.Definition, error) {
		return nil, errors.New("pool closed")
	}}

	_, err := svc.Search(context.Background(), "minôs", Options{Definitions: defs})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load definitions")
}

func TestService_LookupLemma(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFixture().lexicon(), defaultSearchConfig())
	ctx := context.Background()

	got, err := svc.LookupLemma(ctx, "Minôs", domain.LemmaParamPOS, "NI")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.ID)

	got, err = svc.LookupLemma(ctx, "nipāw", domain.LemmaParamNone, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)

	_, err = svc.LookupLemma(ctx, "minôs", domain.LemmaParamNone, "")
	assert.ErrorIs(t, err, domain.ErrAmbiguous)

	_, err = svc.LookupLemma(ctx, "mahihkan", domain.LemmaParamNone, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.LookupLemma(ctx, "  ", domain.LemmaParamNone, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
