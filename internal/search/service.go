package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/morphodict-backend/internal/config"
	"github.com/heartmarshall/morphodict-backend/internal/domain"
	"github.com/heartmarshall/morphodict-backend/internal/morph"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type lexicon interface {
	wordformLexicon
	MorphemeRanking(morpheme string) (float64, bool)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service turns raw queries into ranked, presentable results.
type Service struct {
	log    *slog.Logger
	lex    lexicon
	engine *Engine
	ranker *Ranker
	cfg    config.SearchConfig
}

// NewService creates a new search service. lex and oracle are shared
// read-only by every concurrent search.
func NewService(logger *slog.Logger, lex lexicon, oracle morph.Oracle, cfg config.SearchConfig) *Service {
	return &Service{
		log:    logger.With("service", "search"),
		lex:    lex,
		engine: NewEngine(logger, lex, oracle, EngineOptions{Preverbs: cfg.Preverbs}),
		ranker: NewRanker(lex),
		cfg:    cfg,
	}
}

// Options adjust a single search.
type Options struct {
	// Definitions loads definitions for presentation; nil leaves them empty.
	Definitions DefinitionSource
	// IncludeAutoDefinitions overrides the configured default. The auto
	// directive in the query still wins.
	IncludeAutoDefinitions *bool
	// Verbose requests evidence and the diagnostic trail even without the
	// verbose directive. Ignored unless verbose output is allowed.
	Verbose bool
	// Sources keeps only results whose own or lemma definitions cite one of
	// these dictionary sources. Requires Definitions.
	Sources []string
}

// Response is the outcome of a search.
type Response struct {
	Query   Query
	Results []PresentationResult
	// Total counts results before truncation to the configured maximum.
	Total int
	// Partial is set when the deadline stopped the lookup early.
	Partial                bool
	IncludeAutoDefinitions bool
	VerboseMessages        []string
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

// Search parses raw, runs every lookup strategy within the configured
// deadline, ranks, disambiguates homographs and builds presentation results.
// An empty or directive-only query yields an empty response, not an error.
func (s *Service) Search(ctx context.Context, raw string, opts Options) (*Response, error) {
	includeAuto := s.cfg.DefaultIncludeAutoDefinitions
	if opts.IncludeAutoDefinitions != nil {
		includeAuto = *opts.IncludeAutoDefinitions
	}

	run := NewRun(raw, s.ranker, includeAuto)
	verbose := s.cfg.VerboseAllowed && (opts.Verbose || run.Query.Verbose())

	resp := &Response{
		Query:                  run.Query,
		Results:                []PresentationResult{},
		IncludeAutoDefinitions: run.IncludeAutoDefinitions(),
	}
	if len(opts.Sources) > 0 && opts.Definitions == nil {
		return nil, domain.NewValidationError("sources", "definitions are required to filter by source")
	}
	if !run.Query.IsValid() {
		return resp, nil
	}
	if cvd := run.Query.Directives.Cvd; cvd != nil && *cvd != domain.CvdSearchTypeOff {
		run.AddVerboseMessage("cvd mode %s is not available; using lookup strategies only", *cvd)
	}

	if err := s.execute(ctx, run); err != nil {
		resp.Partial = true
	}

	sorted := run.SortedResults()
	if len(opts.Sources) > 0 {
		var err error
		sorted, err = restrictToSources(ctx, sorted, opts.Definitions, opts.Sources, run.IncludeAutoDefinitions())
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", run.Query.Effective, err)
		}
		if dropped := run.Len() - len(sorted); dropped > 0 {
			run.AddVerboseMessage("dropped %d results without definitions from %s", dropped, strings.Join(opts.Sources, ","))
		}
	}
	resp.Total = len(sorted)
	if s.cfg.MaxResults > 0 && len(sorted) > s.cfg.MaxResults {
		run.AddVerboseMessage("truncated %d results to %d", len(sorted), s.cfg.MaxResults)
		sorted = sorted[:s.cfg.MaxResults]
	}

	links, err := Disambiguate(ctx, s.lex, sorted)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", run.Query.Effective, err)
	}

	resp.Results, err = present(ctx, sorted, links, presentOptions{
		defs:        opts.Definitions,
		includeAuto: run.IncludeAutoDefinitions(),
		verbose:     verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", run.Query.Effective, err)
	}

	if verbose {
		resp.VerboseMessages = run.VerboseMessages()
	}

	s.log.DebugContext(ctx, "search completed",
		slog.String("query", run.Query.Effective),
		slog.Int("results", resp.Total),
		slog.Bool("partial", resp.Partial),
	)
	return resp, nil
}

// execute runs the engine under the configured deadline. Only deadline and
// cancellation errors come back; the run keeps whatever was found.
func (s *Service) execute(ctx context.Context, run *Run) error {
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	err := s.engine.Execute(ctx, run)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WarnContext(ctx, "search deadline exceeded, returning partial results",
			slog.String("query", run.Query.Effective),
			slog.Int("results", run.Len()),
		)
	}
	return err
}

// ---------------------------------------------------------------------------
// LookupLemma
// ---------------------------------------------------------------------------

// LookupLemma resolves a lemma link back to one lemma. param may be empty
// when the text names a single lemma.
func (s *Service) LookupLemma(ctx context.Context, text string, param domain.LemmaParam, value string) (*domain.Wordform, error) {
	text = domain.ToCircumflex(domain.NormalizeText(text))
	if text == "" {
		return nil, domain.NewValidationError("lemma", "required")
	}

	homographs, err := s.lex.FindByText(ctx, text, true)
	if err != nil {
		return nil, fmt.Errorf("lookup lemma %q: %w", text, err)
	}

	lemma, err := ResolveLemma(homographs, param, value)
	if err != nil {
		return nil, fmt.Errorf("lemma %q: %w", text, err)
	}
	return lemma, nil
}
