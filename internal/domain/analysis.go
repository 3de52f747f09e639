package domain

import (
	"regexp"
	"strings"
)

// tagSeparator joins tags and the lemma in the smushed form, e.g. "PV/e+nipâw+V+AI+Cnj+3Sg".
const tagSeparator = "+"

// prefixTagPattern matches tags that may precede the lemma: "IC", "PV/e", "Rdpl/W".
var prefixTagPattern = regexp.MustCompile(`^([A-Z][A-Za-z0-9]*/.+|[A-Z0-9]{1,4})$`)

// Analysis is a morphological analysis: optional prefix tags, the lemma, and suffix tags.
type Analysis struct {
	PrefixTags []string
	Lemma      string
	SuffixTags []string
}

// ParseAnalysis splits a smushed analysis string into its parts. Leading
// tag-shaped tokens are prefix tags, the first other token is the lemma and
// the rest are suffix tags. Returns false for an empty string or a string
// with no lemma.
func ParseAnalysis(smushed string) (Analysis, bool) {
	smushed = strings.TrimSpace(smushed)
	if smushed == "" {
		return Analysis{}, false
	}

	parts := strings.Split(smushed, tagSeparator)
	lemmaIdx := -1
	for i, p := range parts {
		if !prefixTagPattern.MatchString(p) {
			lemmaIdx = i
			break
		}
	}
	if lemmaIdx < 0 || parts[lemmaIdx] == "" {
		return Analysis{}, false
	}

	a := Analysis{Lemma: parts[lemmaIdx]}
	if lemmaIdx > 0 {
		a.PrefixTags = append([]string(nil), parts[:lemmaIdx]...)
	}
	if lemmaIdx+1 < len(parts) {
		a.SuffixTags = append([]string(nil), parts[lemmaIdx+1:]...)
	}
	return a, true
}

// MustParseAnalysis is ParseAnalysis for literals known to be valid. It panics otherwise.
func MustParseAnalysis(smushed string) Analysis {
	a, ok := ParseAnalysis(smushed)
	if !ok {
		panic("domain: invalid analysis " + smushed)
	}
	return a
}

// Smushed returns the canonical single-string form of the analysis.
func (a Analysis) Smushed() string {
	parts := make([]string, 0, len(a.PrefixTags)+1+len(a.SuffixTags))
	parts = append(parts, a.PrefixTags...)
	parts = append(parts, a.Lemma)
	parts = append(parts, a.SuffixTags...)
	return strings.Join(parts, tagSeparator)
}

func (a Analysis) String() string { return a.Smushed() }

// Equal reports whether both analyses have the same smushed form.
func (a Analysis) Equal(other Analysis) bool {
	return a.Smushed() == other.Smushed()
}

// IsZero reports whether the analysis has no lemma.
func (a Analysis) IsZero() bool { return a.Lemma == "" }

// WordClass returns the first suffix tag (e.g. "N", "V", "Ipc", "IPV"), or "" if none.
func (a Analysis) WordClass() string {
	if len(a.SuffixTags) == 0 {
		return ""
	}
	return a.SuffixTags[0]
}

// TagIntersectionCount counts distinct tags shared by both analyses.
// Prefix and suffix tags are compared separately.
func (a Analysis) TagIntersectionCount(other Analysis) int {
	return intersectCount(a.PrefixTags, other.PrefixTags) + intersectCount(a.SuffixTags, other.SuffixTags)
}

func intersectCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(b))
	for _, t := range b {
		set[t] = struct{}{}
	}
	n := 0
	seen := make(map[string]struct{}, len(a))
	for _, t := range a {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

// UniqueAnalyses removes duplicates by smushed form, keeping first occurrences in order.
func UniqueAnalyses(in []Analysis) []Analysis {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]Analysis, 0, len(in))
	for _, a := range in {
		s := a.Smushed()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, a)
	}
	return out
}
