package domain

import (
	"strconv"
	"strings"
)

// CvdSearchType selects how definition-vector comparison takes part in a search.
type CvdSearchType int

const (
	CvdSearchTypeOff       CvdSearchType = 1
	CvdSearchTypeRetrieval CvdSearchType = 2
	CvdSearchTypeExclusive CvdSearchType = 3
)

var cvdSearchTypeNames = map[CvdSearchType]string{
	CvdSearchTypeOff:       "off",
	CvdSearchTypeRetrieval: "retrieval",
	CvdSearchTypeExclusive: "exclusive",
}

// CvdSearchTypes lists every variant in code order.
func CvdSearchTypes() []CvdSearchType {
	return []CvdSearchType{CvdSearchTypeOff, CvdSearchTypeRetrieval, CvdSearchTypeExclusive}
}

func (t CvdSearchType) String() string {
	if name, ok := cvdSearchTypeNames[t]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

func (t CvdSearchType) IsValid() bool {
	_, ok := cvdSearchTypeNames[t]
	return ok
}

// ParseCvdSearchType resolves value first as a numeric code, then as a
// case-insensitive variant name.
func ParseCvdSearchType(value string) (CvdSearchType, bool) {
	if n, err := strconv.Atoi(value); err == nil {
		t := CvdSearchType(n)
		return t, t.IsValid()
	}
	for _, t := range CvdSearchTypes() {
		if strings.EqualFold(value, t.String()) {
			return t, true
		}
	}
	return 0, false
}

// LemmaParam names the query parameter that routes a lemma link to exactly one lemma.
type LemmaParam string

const (
	LemmaParamNone     LemmaParam = ""
	LemmaParamPOS      LemmaParam = "pos"
	LemmaParamAnalysis LemmaParam = "analysis"
	LemmaParamID       LemmaParam = "id"
)

func (p LemmaParam) String() string { return string(p) }

func (p LemmaParam) IsValid() bool {
	switch p {
	case LemmaParamNone, LemmaParamPOS, LemmaParamAnalysis, LemmaParamID:
		return true
	}
	return false
}

// WordClassPreverb is the word class tag of preverb lemmas.
const WordClassPreverb = "IPV"
