package search

import (
	"github.com/agnivade/levenshtein"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
)

// diacriticWeight is the cost of an edit that only changes a diacritic.
const diacriticWeight = 0.5

// ModifiedDistance is a Levenshtein distance in which edits that only add,
// drop or change diacritics cost half as much as other edits. Both strings are
// normalized first, so case and macron/circumflex spelling never count.
func ModifiedDistance(a, b string) float64 {
	a = canonical(a)
	b = canonical(b)
	if a == b {
		return 0
	}

	plain := levenshtein.ComputeDistance(domain.StripDiacritics(a), domain.StripDiacritics(b))
	full := levenshtein.ComputeDistance(a, b)

	extra := full - plain
	if extra < 0 {
		extra = 0
	}
	return float64(plain) + diacriticWeight*float64(extra)
}

func canonical(s string) string {
	return domain.ToCircumflex(domain.NormalizeText(s))
}

// closest returns the candidate nearest to target and its distance. Ties go
// to the earliest candidate. candidates must not be empty.
func closest(candidates []string, target string) (string, float64) {
	best := candidates[0]
	bestDist := ModifiedDistance(best, target)
	for _, c := range candidates[1:] {
		if d := ModifiedDistance(c, target); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}
