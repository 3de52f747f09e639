package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
	"github.com/heartmarshall/morphodict-backend/internal/search"
	"github.com/heartmarshall/morphodict-backend/internal/transport/dataloader"
	"github.com/heartmarshall/morphodict-backend/pkg/ctxutil"
)

// maxQueryLength bounds the raw q parameter.
const maxQueryLength = 256

// searchService defines the minimal interface needed by SearchHandler.
type searchService interface {
	Search(ctx context.Context, raw string, opts search.Options) (*search.Response, error)
	LookupLemma(ctx context.Context, text string, param domain.LemmaParam, value string) (*domain.Wordform, error)
}

// sourceLister lists the dictionaries definitions cite.
type sourceLister interface {
	ListSources(ctx context.Context) ([]domain.DictionarySource, error)
}

// SearchHandler serves the public dictionary API.
type SearchHandler struct {
	svc     searchService
	sources sourceLister
	log     *slog.Logger
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(svc searchService, sources sourceLister, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{svc: svc, sources: sources, log: logger.With("handler", "search")}
}

// RegisterHTTP mounts the dictionary routes on r.
func (h *SearchHandler) RegisterHTTP(r chi.Router) {
	r.Get("/api/search", h.Search)
	r.Get("/api/word/{lemma}", h.Lemma)
	r.Get("/api/sources", h.Sources)
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

type searchResponse struct {
	Query                  string           `json:"query"`
	Results                []resultResponse `json:"results"`
	Total                  int              `json:"total"`
	Partial                bool             `json:"partial"`
	IncludeAutoDefinitions bool             `json:"includeAutoDefinitions"`
	VerboseMessages        []string         `json:"verboseMessages,omitempty"`
}

type resultResponse struct {
	WordformID       *int64               `json:"wordformId,omitempty"`
	Text             string               `json:"text"`
	Analysis         string               `json:"analysis,omitempty"`
	POS              string               `json:"pos,omitempty"`
	IsLemma          bool                 `json:"isLemma"`
	IsSynthetic      bool                 `json:"isSynthetic"`
	Lemma            lemmaLinkResponse    `json:"lemma"`
	Definitions      []definitionResponse `json:"definitions"`
	LemmaDefinitions []definitionResponse `json:"lemmaDefinitions,omitempty"`
	Score            float64              `json:"score"`
	MorphemeRanking  *float64             `json:"morphemeRanking,omitempty"`
	Evidence         []evidenceResponse   `json:"evidence,omitempty"`
}

type lemmaLinkResponse struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type definitionResponse struct {
	Text            string   `json:"text"`
	Sources         []string `json:"sources"`
	AutoTranslation bool     `json:"autoTranslation,omitempty"`
}

type evidenceResponse struct {
	Kind     string   `json:"kind"`
	Distance *float64 `json:"distance,omitempty"`
	Detail   string   `json:"detail,omitempty"`
}

type wordResponse struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Analysis string `json:"analysis,omitempty"`
	POS      string `json:"pos,omitempty"`
}

type sourceResponse struct {
	Abbrv    string `json:"abbrv"`
	Title    string `json:"title"`
	Citation string `json:"citation"`
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

// Search handles GET /api/search?q=...&auto=...&verbose=...&sources=CW,MD
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	raw := params.Get("q")
	if len(raw) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "query too long")
		return
	}

	opts := search.Options{Definitions: dataloader.FromContext(r.Context())}
	if v := params.Get("auto"); v != "" {
		auto, ok := search.ParseFlag(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid auto flag")
			return
		}
		opts.IncludeAutoDefinitions = &auto
	}
	if v := params.Get("verbose"); v != "" {
		verbose, ok := search.ParseFlag(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid verbose flag")
			return
		}
		opts.Verbose = verbose
	}
	for _, src := range strings.Split(params.Get("sources"), ",") {
		if src = strings.TrimSpace(src); src != "" {
			opts.Sources = append(opts.Sources, src)
		}
	}

	resp, err := h.svc.Search(r.Context(), raw, opts)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSearchResponse(resp))
}

// Lemma handles GET /api/word/{lemma}?pos=|analysis=|id=
func (h *SearchHandler) Lemma(w http.ResponseWriter, r *http.Request) {
	text := chi.URLParam(r, "lemma")

	param, value, err := lemmaParam(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	wf, err := h.svc.LookupLemma(r.Context(), text, param, value)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, wordResponse{
		ID:       wf.ID,
		Text:     wf.Text,
		Analysis: wf.SmushedAnalysis(),
		POS:      wf.PartOfSpeech(),
	})
}

// Sources handles GET /api/sources.
func (h *SearchHandler) Sources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.sources.ListSources(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out := make([]sourceResponse, len(sources))
	for i, s := range sources {
		out[i] = sourceResponse{Abbrv: s.Abbrv, Title: s.Title, Citation: s.Citation()}
	}
	writeJSON(w, http.StatusOK, out)
}

// lemmaParam picks the single disambiguation parameter of a lemma URL.
func lemmaParam(r *http.Request) (domain.LemmaParam, string, error) {
	params := r.URL.Query()
	var (
		found domain.LemmaParam
		value string
	)
	for _, p := range []domain.LemmaParam{domain.LemmaParamPOS, domain.LemmaParamAnalysis, domain.LemmaParamID} {
		if !params.Has(p.String()) {
			continue
		}
		if found != domain.LemmaParamNone {
			return "", "", domain.NewValidationError("lemma", "at most one of pos, analysis, id")
		}
		found, value = p, params.Get(p.String())
	}
	return found, value, nil
}

func (h *SearchHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAmbiguous):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to send.
	default:
		ctxutil.Logger(r.Context(), h.log).ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

func toSearchResponse(resp *search.Response) searchResponse {
	out := searchResponse{
		Query:                  resp.Query.Effective,
		Results:                make([]resultResponse, len(resp.Results)),
		Total:                  resp.Total,
		Partial:                resp.Partial,
		IncludeAutoDefinitions: resp.IncludeAutoDefinitions,
		VerboseMessages:        resp.VerboseMessages,
	}
	for i, res := range resp.Results {
		out.Results[i] = toResultResponse(res)
	}
	return out
}

func toResultResponse(res search.PresentationResult) resultResponse {
	out := resultResponse{
		Text:             res.Text,
		Analysis:         res.Analysis,
		POS:              res.POS,
		IsLemma:          res.IsLemma,
		IsSynthetic:      res.IsSynthetic,
		Lemma:            lemmaLinkResponse{Text: res.Lemma.Text, URL: LemmaURL(res.Lemma)},
		Definitions:      toDefinitions(res.Definitions),
		LemmaDefinitions: toDefinitions(res.LemmaDefinitions),
		Score:            res.Score,
		MorphemeRanking:  res.MorphemeRanking,
	}
	if !res.IsSynthetic {
		id := res.WordformID
		out.WordformID = &id
	}
	for _, ev := range res.Evidence {
		out.Evidence = append(out.Evidence, toEvidence(ev))
	}
	return out
}

func toDefinitions(defs []domain.Definition) []definitionResponse {
	out := make([]definitionResponse, len(defs))
	for i, d := range defs {
		out[i] = definitionResponse{
			Text:            d.Text,
			Sources:         d.SortedSourceIDs(),
			AutoTranslation: d.IsAutoTranslation(),
		}
	}
	return out
}

func toEvidence(ev search.Evidence) evidenceResponse {
	out := evidenceResponse{Kind: ev.Kind().String()}
	if d, ok := ev.Distance(); ok {
		out.Distance = &d
	}
	switch e := ev.(type) {
	case search.TargetLanguageKeywordMatch:
		out.Detail = e.Keyword
	case search.SourceLanguageMatch:
		out.Detail = e.Analysis.Smushed()
	case search.SyntheticMatch:
		out.Detail = e.Analysis.Smushed()
	case search.SourceLanguageKeywordMatch:
		out.Detail = e.Keyword
	case search.PreverbMatch:
		out.Detail = e.Text
	}
	return out
}

// LemmaURL renders the route that resolves link back to its lemma.
func LemmaURL(link search.LemmaLink) string {
	u := "/api/word/" + url.PathEscape(link.Text)
	if link.Param != domain.LemmaParamNone {
		u += "?" + url.Values{link.Param.String(): {link.Value}}.Encode()
	}
	return u
}
