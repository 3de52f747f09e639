// Package definition implements definition and dictionary-source reads.
package definition

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/morphodict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/morphodict-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides definition persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new definition repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID                      int64    `db:"id"`
	WordformID              int64    `db:"wordform_id"`
	Text                    string   `db:"text"`
	AutoTranslationSourceID *int64   `db:"auto_translation_source_id"`
	SourceIDs               []string `db:"source_ids"`
}

type sourceRow struct {
	Abbrv     string `db:"abbrv"`
	Title     string `db:"title"`
	Author    string `db:"author"`
	Editor    string `db:"editor"`
	Year      *int   `db:"year"`
	Publisher string `db:"publisher"`
	City      string `db:"city"`
}

// GetByWordformIDs returns the definitions of all given wordforms with their
// cited source abbreviations, ordered by wordform then insertion order.
// Used by the presentation dataloader.
func (r *Repo) GetByWordformIDs(ctx context.Context, wordformIDs []int64) ([]domain.Definition, error) {
	if len(wordformIDs) == 0 {
		return []domain.Definition{}, nil
	}

	query := psql.Select(
		"d.id", "d.wordform_id", "d.text", "d.auto_translation_source_id",
		"COALESCE(array_agg(c.source_abbrv ORDER BY c.source_abbrv) FILTER (WHERE c.source_abbrv IS NOT NULL), '{}') AS source_ids",
	).
		From("definitions d").
		LeftJoin("definition_citations c ON c.definition_id = d.id").
		Where(sq.Eq{"d.wordform_id": wordformIDs}).
		GroupBy("d.id").
		OrderBy("d.wordform_id", "d.id")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build definitions query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "definitions", wordformIDs)
	}

	out := make([]domain.Definition, len(rows))
	for i, rw := range rows {
		out[i] = domain.Definition{
			ID:                      rw.ID,
			WordformID:              rw.WordformID,
			Text:                    rw.Text,
			SourceIDs:               rw.SourceIDs,
			AutoTranslationSourceID: rw.AutoTranslationSourceID,
		}
	}
	return out, nil
}

// ListSources returns every dictionary source ordered by abbreviation.
func (r *Repo) ListSources(ctx context.Context) ([]domain.DictionarySource, error) {
	sql, args, err := psql.Select("abbrv", "title", "author", "editor", "year", "publisher", "city").
		From("dictionary_sources").
		OrderBy("abbrv").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sources query: %w", err)
	}

	var rows []sourceRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "dictionary_sources", "all")
	}

	out := make([]domain.DictionarySource, len(rows))
	for i, s := range rows {
		out[i] = domain.DictionarySource(s)
	}
	return out, nil
}
