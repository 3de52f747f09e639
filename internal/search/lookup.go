package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
	"github.com/heartmarshall/morphodict-backend/internal/morph"
	"github.com/heartmarshall/morphodict-backend/pkg/stem"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces
// ---------------------------------------------------------------------------

type wordformLexicon interface {
	FindByAnalysis(ctx context.Context, a domain.Analysis) ([]domain.Wordform, error)
	FindByText(ctx context.Context, text string, lemmasOnly bool) ([]domain.Wordform, error)
	FindByTargetKeyword(ctx context.Context, keyword string) ([]domain.Wordform, error)
	FindBySourceKeyword(ctx context.Context, texts ...string) ([]domain.SourceKeywordMatch, error)
	FindPreverb(ctx context.Context, text string) ([]domain.Wordform, error)
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

type strategy struct {
	name string
	fn   func(ctx context.Context, run *Run) error
}

// EngineOptions toggles optional strategies.
type EngineOptions struct {
	Preverbs bool
}

// Engine runs the lookup strategies over a Run, strictly one after another.
// It keeps no per-run state and may serve concurrent runs.
type Engine struct {
	lex        wordformLexicon
	oracle     morph.Oracle
	log        *slog.Logger
	strategies []strategy
}

func NewEngine(logger *slog.Logger, lex wordformLexicon, oracle morph.Oracle, opts EngineOptions) *Engine {
	e := &Engine{
		lex:    lex,
		oracle: oracle,
		log:    logger.With("service", "search_engine"),
	}
	e.strategies = []strategy{
		{name: "target_language_keyword", fn: e.targetLanguageKeywords},
		{name: "relaxed_analysis", fn: e.relaxedAnalyses},
		{name: "synthetic", fn: e.syntheticForms},
		{name: "source_language_keyword", fn: e.sourceLanguageKeywords},
	}
	if opts.Preverbs {
		e.strategies = append(e.strategies, strategy{name: "preverb", fn: e.preverbs})
	}
	return e
}

// Execute runs every strategy in order. A cancelled context stops the
// pipeline before the next lookup; the results gathered so far stay in run
// and the context error is returned.
func (e *Engine) Execute(ctx context.Context, run *Run) error {
	if !run.Query.IsValid() {
		return nil
	}

	for _, s := range e.strategies {
		if err := ctx.Err(); err != nil {
			run.AddVerboseMessage("skipped %s: %v", s.name, err)
			return err
		}
		if err := s.fn(ctx, run); err != nil {
			if ctx.Err() != nil {
				run.AddVerboseMessage("interrupted %s: %v", s.name, err)
				return ctx.Err()
			}
			e.log.ErrorContext(ctx, "lookup strategy failed",
				slog.String("strategy", s.name),
				slog.String("query", run.Query.Effective),
				slog.String("error", err.Error()),
			)
			run.AddVerboseMessage("%s failed: %v", s.name, err)
		}
	}
	return nil
}

// isolate records a per-item lookup failure and lets the strategy go on.
// It returns the context error if the failure came from cancellation.
func (e *Engine) isolate(ctx context.Context, run *Run, strategy, item string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	e.log.ErrorContext(ctx, "lookup failed",
		slog.String("strategy", strategy),
		slog.String("item", item),
		slog.String("error", err.Error()),
	)
	run.AddVerboseMessage("%s: lookup of %q failed: %v", strategy, item, err)
	return nil
}

// ---------------------------------------------------------------------------
// Strategies
// ---------------------------------------------------------------------------

func (e *Engine) targetLanguageKeywords(ctx context.Context, run *Run) error {
	for _, kw := range stem.Keywords(run.Query.Effective) {
		wordforms, err := e.lex.FindByTargetKeyword(ctx, kw)
		if err != nil {
			if err := e.isolate(ctx, run, "target_language_keyword", kw, err); err != nil {
				return err
			}
			continue
		}
		for i := range wordforms {
			run.AddResult(NewResult(&wordforms[i], TargetLanguageKeywordMatch{Keyword: kw}))
		}
	}
	return nil
}

// relaxedAnalyses adds stored wordforms carrying a relaxed analysis of the
// query. Analyses no stored wordform carries are left for syntheticForms.
func (e *Engine) relaxedAnalyses(ctx context.Context, run *Run) error {
	query := run.Query.Effective
	run.unmatched = run.unmatched[:0]

	for _, a := range e.oracle.AnalyzeRelaxed(query) {
		wordforms, err := e.lex.FindByAnalysis(ctx, a)
		if err != nil {
			if err := e.isolate(ctx, run, "relaxed_analysis", a.Smushed(), err); err != nil {
				return err
			}
			continue
		}
		if len(wordforms) == 0 {
			run.unmatched = append(run.unmatched, a)
			continue
		}

		for i := range wordforms {
			wf := &wordforms[i]
			if wf.Analysis == nil || !wf.Analysis.Equal(a) {
				e.log.WarnContext(ctx, "stored analysis does not match lookup",
					slog.Int64("wordform_id", wf.ID),
					slog.String("stored", wf.SmushedAnalysis()),
					slog.String("analysis", a.Smushed()),
				)
				run.AddVerboseMessage("wordform %d has analysis %q, looked up by %q", wf.ID, wf.SmushedAnalysis(), a.Smushed())
				continue
			}
			run.AddResult(NewResult(wf, SourceLanguageMatch{
				Analysis:     a,
				EditDistance: ModifiedDistance(wf.Text, query),
			}))
		}
	}
	return nil
}

// syntheticForms generates the normative spelling of each unmatched analysis
// and attaches it to the lemma(s) it belongs to.
func (e *Engine) syntheticForms(ctx context.Context, run *Run) error {
	query := run.Query.Effective

	for _, a := range run.unmatched {
		surfaces := e.oracle.GenerateStrict(a)
		if len(surfaces) == 0 {
			e.log.ErrorContext(ctx, "cannot generate normative form",
				slog.String("analysis", a.Smushed()),
				slog.String("query", query),
			)
			run.AddVerboseMessage("no normative form for analysis %q", a.Smushed())
			continue
		}
		text, dist := closest(surfaces, query)

		lemmas, err := e.lex.FindByText(ctx, a.Lemma, true)
		if err != nil {
			if err := e.isolate(ctx, run, "synthetic", a.Lemma, err); err != nil {
				return err
			}
			continue
		}
		if len(lemmas) == 0 {
			run.AddVerboseMessage("no lemma %q for analysis %q", a.Lemma, a.Smushed())
			continue
		}

		for _, lemma := range closestLemmas(a, lemmas) {
			analysis := a
			wf := &domain.Wordform{
				Text:     text,
				Analysis: &analysis,
				LemmaID:  lemma.ID,
				Lemma:    lemma,
			}
			run.AddResult(NewResult(wf, SyntheticMatch{Analysis: a, EditDistance: dist}))
		}
	}
	run.unmatched = nil
	return nil
}

// closestLemmas keeps the lemmas sharing the most tags with a. Ties are all
// kept.
func closestLemmas(a domain.Analysis, lemmas []domain.Wordform) []*domain.Wordform {
	if len(lemmas) == 1 {
		return []*domain.Wordform{&lemmas[0]}
	}

	best := -1
	var out []*domain.Wordform
	for i := range lemmas {
		n := 0
		if lemmas[i].Analysis != nil {
			n = a.TagIntersectionCount(*lemmas[i].Analysis)
		}
		switch {
		case n > best:
			best = n
			out = []*domain.Wordform{&lemmas[i]}
		case n == best:
			out = append(out, &lemmas[i])
		}
	}
	return out
}

func (e *Engine) sourceLanguageKeywords(ctx context.Context, run *Run) error {
	query := run.Query.Effective
	texts := []string{query}
	if stripped := strings.ToLower(domain.StripDiacritics(query)); stripped != query {
		texts = append(texts, stripped)
	}

	matches, err := e.lex.FindBySourceKeyword(ctx, texts...)
	if err != nil {
		return fmt.Errorf("source keywords %q: %w", query, err)
	}
	for i := range matches {
		wf := &matches[i].Wordform
		run.AddResult(NewResult(wf, SourceLanguageKeywordMatch{
			Keyword:      matches[i].Keyword,
			EditDistance: ModifiedDistance(query, wf.Text),
		}))
	}
	return nil
}

func (e *Engine) preverbs(ctx context.Context, run *Run) error {
	query := run.Query.Effective

	wordforms, err := e.lex.FindPreverb(ctx, query)
	if err != nil {
		return fmt.Errorf("preverb %q: %w", query, err)
	}
	for i := range wordforms {
		wf := &wordforms[i]
		run.AddResult(NewResult(wf, PreverbMatch{
			Text:         wf.Text,
			EditDistance: ModifiedDistance(query, wf.Text),
		}))
	}
	return nil
}
