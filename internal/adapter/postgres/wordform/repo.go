// Package wordform implements the lexicon read model over the wordforms table
// and its keyword indexes. Every query joins the lemma row so that
// domain.Wordform.Lemma is populated without a second round trip.
package wordform

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/morphodict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/morphodict-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides wordform lookups backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new wordform repository. db is usually a *pgxpool.Pool.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// row is the flat shape of a wordform joined with its lemma.
type row struct {
	ID               int64   `db:"id"`
	Text             string  `db:"text"`
	RawAnalysis      *string `db:"raw_analysis"`
	Paradigm         *string `db:"paradigm"`
	IsLemma          bool    `db:"is_lemma"`
	LemmaID          *int64  `db:"lemma_id"`
	Slug             *string `db:"slug"`
	LinguistInfoStem string  `db:"linguist_info_stem"`
	LinguistInfoPOS  string  `db:"linguist_info_pos"`

	LemmaText        *string `db:"lemma_text"`
	LemmaRawAnalysis *string `db:"lemma_raw_analysis"`
	LemmaParadigm    *string `db:"lemma_paradigm"`
	LemmaSlug        *string `db:"lemma_slug"`
	LemmaStem        *string `db:"lemma_linguist_info_stem"`
	LemmaPOS         *string `db:"lemma_linguist_info_pos"`
}

// keywordRow is a row plus the keyword it was found through.
type keywordRow struct {
	row
	Keyword string `db:"keyword"`
}

var wordformColumns = []string{
	"w.id", "w.text", "w.raw_analysis", "w.paradigm", "w.is_lemma", "w.lemma_id", "w.slug",
	"w.linguist_info_stem", "w.linguist_info_pos",
	"l.text AS lemma_text", "l.raw_analysis AS lemma_raw_analysis", "l.paradigm AS lemma_paradigm",
	"l.slug AS lemma_slug", "l.linguist_info_stem AS lemma_linguist_info_stem",
	"l.linguist_info_pos AS lemma_linguist_info_pos",
}

func selectWordforms() sq.SelectBuilder {
	return psql.Select(wordformColumns...).
		From("wordforms w").
		LeftJoin("wordforms l ON l.id = w.lemma_id")
}

// FindByAnalysis returns the wordforms whose stored analysis equals a exactly.
func (r *Repo) FindByAnalysis(ctx context.Context, a domain.Analysis) ([]domain.Wordform, error) {
	smushed := a.Smushed()
	query := selectWordforms().
		Where(sq.Eq{"w.raw_analysis": smushed}).
		OrderBy("w.id")

	return r.list(ctx, query, "wordform", smushed)
}

// FindByText returns wordforms with exactly this text. With lemmasOnly only
// lemma rows are returned.
func (r *Repo) FindByText(ctx context.Context, text string, lemmasOnly bool) ([]domain.Wordform, error) {
	query := selectWordforms().
		Where(sq.Eq{"w.text": text}).
		OrderBy("w.id")
	if lemmasOnly {
		query = query.Where(sq.Eq{"w.is_lemma": true})
	}

	return r.list(ctx, query, "wordform", text)
}

// FindByTargetKeyword returns wordforms indexed under a gloss-language keyword,
// compared case-insensitively.
func (r *Repo) FindByTargetKeyword(ctx context.Context, keyword string) ([]domain.Wordform, error) {
	if keyword == "" {
		return []domain.Wordform{}, nil
	}

	query := selectWordforms().
		Distinct().
		Join("target_language_keywords k ON k.wordform_id = w.id").
		Where(sq.Expr("lower(k.text) = lower(?)", keyword)).
		OrderBy("w.id")

	return r.list(ctx, query, "target_language_keyword", keyword)
}

// FindBySourceKeyword returns wordforms whose source-language keyword equals
// any of texts, together with the keyword that matched.
func (r *Repo) FindBySourceKeyword(ctx context.Context, texts ...string) ([]domain.SourceKeywordMatch, error) {
	if len(texts) == 0 {
		return []domain.SourceKeywordMatch{}, nil
	}

	query := selectWordforms().
		Column("k.text AS keyword").
		Join("source_language_keywords k ON k.wordform_id = w.id").
		Where(sq.Eq{"k.text": texts}).
		OrderBy("w.id", "k.text")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build source keyword query: %w", err)
	}

	var rows []keywordRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "source_language_keyword", texts)
	}

	out := make([]domain.SourceKeywordMatch, 0, len(rows))
	for _, kr := range rows {
		out = append(out, domain.SourceKeywordMatch{Keyword: kr.Keyword, Wordform: toDomain(kr.row)})
	}
	return out, nil
}

// ListLemmasByWordClass returns every lemma whose analysis word class is wordClass.
func (r *Repo) ListLemmasByWordClass(ctx context.Context, wordClass string) ([]domain.Wordform, error) {
	query := selectWordforms().
		Where(sq.Eq{"w.is_lemma": true, "w.word_class": wordClass}).
		OrderBy("w.id")

	return r.list(ctx, query, "wordform", wordClass)
}

// GetByID returns a single wordform or domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Wordform, error) {
	found, err := r.list(ctx, selectWordforms().Where(sq.Eq{"w.id": id}), "wordform", id)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, postgres.MapError(pgx.ErrNoRows, "wordform", id)
	}
	return &found[0], nil
}

func (r *Repo) list(ctx context.Context, query sq.SelectBuilder, entity string, key any) ([]domain.Wordform, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", entity, err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, entity, key)
	}

	out := make([]domain.Wordform, len(rows))
	for i, rw := range rows {
		out[i] = toDomain(rw)
	}
	return out, nil
}

func toDomain(rw row) domain.Wordform {
	w := domain.Wordform{
		ID:               rw.ID,
		Text:             rw.Text,
		Analysis:         parseAnalysis(rw.RawAnalysis),
		Paradigm:         rw.Paradigm,
		IsLemma:          rw.IsLemma,
		LinguistInfoStem: rw.LinguistInfoStem,
		LinguistInfoPOS:  rw.LinguistInfoPOS,
	}
	if rw.Slug != nil {
		w.Slug = *rw.Slug
	}
	if rw.LemmaID == nil {
		return w
	}

	w.LemmaID = *rw.LemmaID
	if w.LemmaID == w.ID || rw.LemmaText == nil {
		return w
	}

	lemma := &domain.Wordform{
		ID:       w.LemmaID,
		Text:     *rw.LemmaText,
		Analysis: parseAnalysis(rw.LemmaRawAnalysis),
		Paradigm: rw.LemmaParadigm,
		IsLemma:  true,
		LemmaID:  w.LemmaID,
	}
	if rw.LemmaSlug != nil {
		lemma.Slug = *rw.LemmaSlug
	}
	if rw.LemmaStem != nil {
		lemma.LinguistInfoStem = *rw.LemmaStem
	}
	if rw.LemmaPOS != nil {
		lemma.LinguistInfoPOS = *rw.LemmaPOS
	}
	w.Lemma = lemma
	return w
}

func parseAnalysis(raw *string) *domain.Analysis {
	if raw == nil {
		return nil
	}
	a, ok := domain.ParseAnalysis(*raw)
	if !ok {
		return nil
	}
	return &a
}
