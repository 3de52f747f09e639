package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
)

type lemmaFinder interface {
	FindByText(ctx context.Context, text string, lemmasOnly bool) ([]domain.Wordform, error)
}

// LemmaLink routes a follow-up lookup to exactly one lemma: the lemma text
// plus, for homographs, one distinguishing parameter.
type LemmaLink struct {
	Text  string
	Param domain.LemmaParam
	Value string
}

// paramOrder is the preference order of distinguishing parameters.
var paramOrder = []domain.LemmaParam{
	domain.LemmaParamPOS,
	domain.LemmaParamAnalysis,
	domain.LemmaParamID,
}

func paramValue(wf *domain.Wordform, p domain.LemmaParam) string {
	switch p {
	case domain.LemmaParamPOS:
		return wf.PartOfSpeech()
	case domain.LemmaParamAnalysis:
		return wf.SmushedAnalysis()
	case domain.LemmaParamID:
		return strconv.FormatInt(wf.ID, 10)
	}
	return ""
}

// Disambiguate assigns a LemmaLink to every persisted lemma reachable from
// results: the result wordforms that are lemmas and the lemmas of the rest.
// Lemmas sharing text with another lemma get the first parameter of pos,
// analysis, id whose values are pairwise distinct among them.
func Disambiguate(ctx context.Context, lex lemmaFinder, results []*Result) (map[int64]LemmaLink, error) {
	links := make(map[int64]LemmaLink)

	var texts []string
	seen := make(map[string]struct{})
	for _, res := range results {
		lemma := res.Wordform.LemmaWordform()
		if !lemma.IsLemma || lemma.IsSynthetic() {
			continue
		}
		if _, ok := seen[lemma.Text]; ok {
			continue
		}
		seen[lemma.Text] = struct{}{}
		texts = append(texts, lemma.Text)
	}

	for _, text := range texts {
		homographs, err := lex.FindByText(ctx, text, true)
		if err != nil {
			return nil, fmt.Errorf("homographs of %q: %w", text, err)
		}
		for id, link := range assignParams(text, homographs) {
			links[id] = link
		}
	}
	return links, nil
}

func assignParams(text string, homographs []domain.Wordform) map[int64]LemmaLink {
	out := make(map[int64]LemmaLink, len(homographs))
	if len(homographs) < 2 {
		for i := range homographs {
			out[homographs[i].ID] = LemmaLink{Text: text}
		}
		return out
	}

	param := domain.LemmaParamID
	for _, p := range paramOrder {
		if distinctValues(homographs, p) {
			param = p
			break
		}
	}
	for i := range homographs {
		out[homographs[i].ID] = LemmaLink{
			Text:  text,
			Param: param,
			Value: paramValue(&homographs[i], param),
		}
	}
	return out
}

func distinctValues(homographs []domain.Wordform, p domain.LemmaParam) bool {
	seen := make(map[string]struct{}, len(homographs))
	for i := range homographs {
		v := paramValue(&homographs[i], p)
		if v == "" {
			return false
		}
		if _, dup := seen[v]; dup {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

// ResolveLemma picks the lemma a link points to among the lemmas sharing its
// text. Without a parameter the text must be unambiguous.
func ResolveLemma(homographs []domain.Wordform, param domain.LemmaParam, value string) (*domain.Wordform, error) {
	if !param.IsValid() {
		return nil, domain.NewValidationError("param", "unknown lemma parameter "+strconv.Quote(string(param)))
	}

	var matches []*domain.Wordform
	for i := range homographs {
		if param == domain.LemmaParamNone || paramValue(&homographs[i], param) == value {
			matches = append(matches, &homographs[i])
		}
	}

	switch len(matches) {
	case 0:
		return nil, domain.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%d lemmas match: %w", len(matches), domain.ErrAmbiguous)
	}
}
