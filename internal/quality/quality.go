// Package quality measures search relevance against a list of queries whose
// expected lemma is known.
package quality

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
	"github.com/heartmarshall/morphodict-backend/internal/search"
)

const defaultPoolSize = 8

// searcher is the part of search.Service the evaluator drives.
type searcher interface {
	Search(ctx context.Context, raw string, opts search.Options) (*search.Response, error)
}

// Pair is one evaluation case.
type Pair struct {
	Query    string
	Expected string
}

// ReadPairs parses query<TAB>expected lines. Blank lines and lines starting
// with # are skipped.
func ReadPairs(r io.Reader) ([]Pair, error) {
	var pairs []Pair
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		query, expected, ok := strings.Cut(text, "\t")
		query, expected = strings.TrimSpace(query), strings.TrimSpace(expected)
		if !ok || query == "" || expected == "" {
			return nil, fmt.Errorf("line %d: want query<TAB>expected lemma", line)
		}
		pairs = append(pairs, Pair{Query: query, Expected: expected})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read pairs: %w", err)
	}
	return pairs, nil
}

// Outcome is the result of one pair. Rank is 1-based; 0 means the expected
// lemma was not among the results.
type Outcome struct {
	Pair
	Rank    int
	Results int
	Err     error
}

// Report summarizes an evaluation.
type Report struct {
	Outcomes []Outcome
	Top1     int
	Top3     int
	Missing  int
	Errors   int
	// MRR is the mean reciprocal rank over pairs that did not error.
	MRR      float64
	Duration time.Duration
}

// Evaluator runs many searches concurrently against shared read-only state.
type Evaluator struct {
	log      *slog.Logger
	svc      searcher
	poolSize int
}

// NewEvaluator creates an Evaluator. poolSize <= 0 uses a default.
func NewEvaluator(logger *slog.Logger, svc searcher, poolSize int) *Evaluator {
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	return &Evaluator{log: logger.With("service", "quality"), svc: svc, poolSize: poolSize}
}

// Evaluate searches every pair and ranks the expected lemma. A failing query
// is recorded in its outcome and does not stop the others.
func (e *Evaluator) Evaluate(ctx context.Context, pairs []Pair) (*Report, error) {
	pool, err := ants.NewPool(e.poolSize)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	defer pool.Release()

	start := time.Now()
	outcomes := make([]Outcome, len(pairs))

	var wg sync.WaitGroup
	for i, p := range pairs {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			outcomes[i] = e.evaluate(ctx, p)
		})
		if err != nil {
			wg.Done()
			outcomes[i] = Outcome{Pair: p, Err: fmt.Errorf("submit: %w", err)}
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := summarize(outcomes)
	report.Duration = time.Since(start)

	e.log.InfoContext(ctx, "evaluation completed",
		slog.Int("pairs", len(pairs)),
		slog.Int("top1", report.Top1),
		slog.Int("top3", report.Top3),
		slog.Int("errors", report.Errors),
		slog.Float64("mrr", report.MRR),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}

func (e *Evaluator) evaluate(ctx context.Context, p Pair) Outcome {
	out := Outcome{Pair: p}
	resp, err := e.svc.Search(ctx, p.Query, search.Options{})
	if err != nil {
		e.log.WarnContext(ctx, "evaluation query failed", slog.String("query", p.Query), slog.String("error", err.Error()))
		out.Err = err
		return out
	}

	out.Results = len(resp.Results)
	out.Rank = rankOf(resp.Results, p.Expected)
	return out
}

// rankOf returns the 1-based position of the first result whose lemma is
// expected, comparing normalized spellings.
func rankOf(results []search.PresentationResult, expected string) int {
	want := domain.ToCircumflex(domain.NormalizeText(expected))
	for i, res := range results {
		if domain.ToCircumflex(domain.NormalizeText(res.Lemma.Text)) == want {
			return i + 1
		}
	}
	return 0
}

func summarize(outcomes []Outcome) *Report {
	r := &Report{Outcomes: outcomes}
	var reciprocal float64
	scored := 0
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			r.Errors++
			continue
		case o.Rank == 0:
			r.Missing++
		default:
			reciprocal += 1 / float64(o.Rank)
			if o.Rank == 1 {
				r.Top1++
			}
			if o.Rank <= 3 {
				r.Top3++
			}
		}
		scored++
	}
	if scored > 0 {
		r.MRR = reciprocal / float64(scored)
	}
	return r
}

// WriteTSV writes one line per outcome followed by the summary.
func (r *Report) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "query\texpected\trank\tresults\terror")
	for _, o := range r.Outcomes {
		errText := ""
		if o.Err != nil {
			errText = o.Err.Error()
		}
		fmt.Fprintf(bw, "%s\t%s\t%d\t%d\t%s\n", o.Query, o.Expected, o.Rank, o.Results, errText)
	}
	fmt.Fprintf(bw, "# pairs=%d top1=%d top3=%d missing=%d errors=%d mrr=%.4f\n",
		len(r.Outcomes), r.Top1, r.Top3, r.Missing, r.Errors, r.MRR)
	return bw.Flush()
}
