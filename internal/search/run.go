package search

import (
	"fmt"
	"slices"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
)

// Run holds one query and the results gathered for it. It is owned by a
// single request and is not safe for concurrent use.
type Run struct {
	Query Query

	includeAuto bool
	ranker      *Ranker
	results     map[domain.WordformKey]*Result
	order       []domain.WordformKey
	verbose     []string

	// unmatched holds relaxed analyses no stored wordform carries; the
	// relaxed-analysis strategy fills it and synthetic generation consumes it.
	unmatched []domain.Analysis
}

// NewRun parses raw and prepares an empty run. The auto directive of the query
// wins over includeAutoDefault. A nil ranker ranks without morpheme frequencies.
func NewRun(raw string, ranker *Ranker, includeAutoDefault bool) *Run {
	q := ParseQuery(raw)

	if ranker == nil {
		ranker = NewRanker(nil)
	}

	includeAuto := includeAutoDefault
	if q.Directives.Auto != nil {
		includeAuto = *q.Directives.Auto
	}

	return &Run{
		Query:       q,
		includeAuto: includeAuto,
		ranker:      ranker,
		results:     make(map[domain.WordformKey]*Result),
	}
}

// IncludeAutoDefinitions reports whether auto-translated definitions are shown.
func (r *Run) IncludeAutoDefinitions() bool { return r.includeAuto }

// AddResult inserts res or, if a result with the same identity exists,
// merges res's evidence into it. A nil result or wordform is a caller bug.
func (r *Run) AddResult(res *Result) {
	if res == nil || res.Wordform == nil {
		panic(fmt.Sprintf("search: AddResult called with %#v", res))
	}

	key := res.Key()
	if existing, ok := r.results[key]; ok {
		existing.merge(res)
		return
	}
	r.results[key] = res
	r.order = append(r.order, key)
}

// HasResult reports whether a result with the identity of res exists.
func (r *Run) HasResult(res *Result) bool {
	_, ok := r.results[res.Key()]
	return ok
}

// RemoveResult deletes the result with the identity of res, if any.
func (r *Run) RemoveResult(res *Result) {
	key := res.Key()
	if _, ok := r.results[key]; !ok {
		return
	}
	delete(r.results, key)
	r.order = slices.DeleteFunc(r.order, func(k domain.WordformKey) bool { return k == key })
}

// Len returns the number of distinct results.
func (r *Run) Len() int { return len(r.results) }

// UnsortedResults returns the current results in discovery order.
func (r *Run) UnsortedResults() []*Result {
	out := make([]*Result, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.results[key])
	}
	return out
}

// SortedResults scores every result not yet scored and returns all results
// in ranking order. Repeated calls on an unchanged run return the same order.
func (r *Run) SortedResults() []*Result {
	out := r.UnsortedResults()
	for _, res := range out {
		if !res.scored {
			r.ranker.Assign(res)
		}
	}
	slices.SortFunc(out, r.ranker.Compare)
	return out
}

// AddVerboseMessage appends to the diagnostic trail. It never affects matching.
func (r *Run) AddVerboseMessage(format string, args ...any) {
	r.verbose = append(r.verbose, fmt.Sprintf(format, args...))
}

func (r *Run) VerboseMessages() []string {
	return slices.Clone(r.verbose)
}
