package search

import "github.com/heartmarshall/morphodict-backend/internal/domain"

// Result is one wordform found by a search together with every piece of
// evidence gathered for it.
type Result struct {
	Wordform *domain.Wordform
	Evidence []Evidence

	score           float64
	morphemeRanking *float64
	scored          bool
}

// NewResult creates a result carrying the given evidence.
func NewResult(wf *domain.Wordform, ev ...Evidence) *Result {
	return &Result{Wordform: wf, Evidence: ev}
}

// Key returns the identity under which the result is merged.
func (r *Result) Key() domain.WordformKey { return r.Wordform.Key() }

// Score returns the relevance score and whether it has been computed.
func (r *Result) Score() (float64, bool) { return r.score, r.scored }

// MorphemeRanking returns the frequency ranking of the wordform text, if known.
// Only meaningful after scoring.
func (r *Result) MorphemeRanking() (float64, bool) {
	if r.morphemeRanking == nil {
		return 0, false
	}
	return *r.morphemeRanking, true
}

// HasKind reports whether any evidence was produced by kind.
func (r *Result) HasKind(kind MatchKind) bool {
	for _, ev := range r.Evidence {
		if ev.Kind() == kind {
			return true
		}
	}
	return false
}

// BestDistance returns the smallest edit distance across all evidence.
func (r *Result) BestDistance() (float64, bool) {
	var (
		best  float64
		found bool
	)
	for _, ev := range r.Evidence {
		d, ok := ev.Distance()
		if !ok {
			continue
		}
		if !found || d < best {
			best, found = d, true
		}
	}
	return best, found
}

// TargetKeywords returns the distinct target-language keywords that matched.
func (r *Result) TargetKeywords() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, ev := range r.Evidence {
		m, ok := ev.(TargetLanguageKeywordMatch)
		if !ok {
			continue
		}
		if _, dup := seen[m.Keyword]; dup {
			continue
		}
		seen[m.Keyword] = struct{}{}
		out = append(out, m.Keyword)
	}
	return out
}

// merge appends the evidence of other. Evidence is never dropped, and the
// cached score is invalidated.
func (r *Result) merge(other *Result) {
	r.Evidence = append(r.Evidence, other.Evidence...)
	if r.Wordform.Lemma == nil && other.Wordform.Lemma != nil {
		r.Wordform.Lemma = other.Wordform.Lemma
	}
	r.scored = false
}
