package search

import (
	"cmp"
	"math"
)

// Relevance weights. The category term dominates: the largest total of the
// distance penalty and both bonuses (17.5 + 2 + 4) is smaller than one
// category step, so a better match kind always ranks first.
const (
	baseScore       = 100.0
	categoryWeight  = 25.0
	distanceWeight  = 5.0
	maxDistance     = 3.5
	lemmaBonus      = 2.0
	keywordBonus    = 1.0
	maxKeywordBonus = 4.0
)

// categoryRank orders match kinds; lower ranks first.
var categoryRank = map[MatchKind]int{
	MatchSourceLanguage:        0,
	MatchSynthetic:             1,
	MatchSourceLanguageKeyword: 2,
	MatchPreverb:               3,
	MatchTargetLanguageKeyword: 4,
}

const worstCategory = 5

// RankingSource supplies morpheme frequency rankings.
type RankingSource interface {
	MorphemeRanking(morpheme string) (float64, bool)
}

// Ranker scores and orders results. It holds no per-run state.
type Ranker struct {
	rankings RankingSource
}

// NewRanker creates a ranker. rankings may be nil.
func NewRanker(rankings RankingSource) *Ranker {
	return &Ranker{rankings: rankings}
}

// Score computes the relevance of res:
//
//	100 - 25*category - 5*min(distance, 3.5) + 2*lemma + min(extra keywords, 4)
//
// where category is the best match kind of any evidence and distance the
// smallest edit distance (3.5 when no evidence carries one).
func (rk *Ranker) Score(res *Result) float64 {
	category := worstCategory
	for _, ev := range res.Evidence {
		if c, ok := categoryRank[ev.Kind()]; ok && c < category {
			category = c
		}
	}

	dist, ok := res.BestDistance()
	if !ok || dist > maxDistance {
		dist = maxDistance
	}

	score := baseScore - categoryWeight*float64(category) - distanceWeight*dist
	if res.Wordform.IsLemma {
		score += lemmaBonus
	}
	if n := len(res.TargetKeywords()); n > 1 {
		score += math.Min(keywordBonus*float64(n-1), maxKeywordBonus)
	}
	return score
}

// Assign stores the score and morpheme ranking on res.
func (rk *Ranker) Assign(res *Result) {
	res.score = rk.Score(res)
	res.morphemeRanking = nil
	if rk.rankings != nil {
		if v, ok := rk.rankings.MorphemeRanking(res.Wordform.Text); ok {
			res.morphemeRanking = &v
		}
	}
	res.scored = true
}

// Compare orders scored results: higher score, then known morpheme ranking
// before unknown and higher before lower, then text, then identity. Distinct
// results never compare equal.
func (rk *Ranker) Compare(a, b *Result) int {
	if c := cmp.Compare(b.score, a.score); c != 0 {
		return c
	}

	ra, aok := a.MorphemeRanking()
	rb, bok := b.MorphemeRanking()
	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case aok && bok:
		if c := cmp.Compare(rb, ra); c != 0 {
			return c
		}
	}

	if c := cmp.Compare(a.Wordform.Text, b.Wordform.Text); c != 0 {
		return c
	}
	return cmp.Compare(a.Key().String(), b.Key().String())
}
