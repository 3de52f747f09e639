package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedSource inserts a dictionary source with a unique abbreviation.
func SeedSource(t *testing.T, pool *pgxpool.Pool) domain.DictionarySource {
	t.Helper()

	src := domain.DictionarySource{
		Abbrv: "T" + uniqueSuffix()[:6],
		Title: "Test Dictionary",
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO dictionary_sources (abbrv, title) VALUES ($1, $2)`,
		src.Abbrv, src.Title,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSource: %v", err)
	}
	return src
}

// SeedLemma inserts a lemma wordform (lemma_id pointing at itself).
// An empty analysis is stored as NULL.
func SeedLemma(t *testing.T, pool *pgxpool.Pool, text, analysis, pos string) domain.Wordform {
	t.Helper()
	ctx := context.Background()

	w := domain.Wordform{
		Text:            text,
		IsLemma:         true,
		Slug:            text + "-" + uniqueSuffix(),
		LinguistInfoPOS: pos,
	}
	wordClass := ""
	if a, ok := domain.ParseAnalysis(analysis); ok {
		w.Analysis = &a
		wordClass = a.WordClass()
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO wordforms (text, raw_analysis, word_class, is_lemma, slug, linguist_info_pos)
		 VALUES ($1, NULLIF($2, ''), $3, TRUE, $4, $5) RETURNING id`,
		w.Text, analysis, wordClass, w.Slug, w.LinguistInfoPOS,
	).Scan(&w.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedLemma insert: %v", err)
	}

	if _, err := pool.Exec(ctx, `UPDATE wordforms SET lemma_id = id WHERE id = $1`, w.ID); err != nil {
		t.Fatalf("testhelper: SeedLemma self reference: %v", err)
	}
	w.LemmaID = w.ID
	return w
}

// SeedInflection inserts a non-lemma wordform of lemma.
func SeedInflection(t *testing.T, pool *pgxpool.Pool, lemma domain.Wordform, text, analysis string) domain.Wordform {
	t.Helper()

	a := domain.MustParseAnalysis(analysis)
	w := domain.Wordform{Text: text, Analysis: &a, LemmaID: lemma.ID, Lemma: &lemma}

	err := pool.QueryRow(context.Background(),
		`INSERT INTO wordforms (text, raw_analysis, word_class, is_lemma, lemma_id)
		 VALUES ($1, $2, $3, FALSE, $4) RETURNING id`,
		w.Text, analysis, a.WordClass(), lemma.ID,
	).Scan(&w.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedInflection: %v", err)
	}
	return w
}

// SeedDefinition inserts a definition of wordformID citing src.
func SeedDefinition(t *testing.T, pool *pgxpool.Pool, wordformID int64, text string, src domain.DictionarySource) domain.Definition {
	t.Helper()
	ctx := context.Background()

	d := domain.Definition{WordformID: wordformID, Text: text, SourceIDs: []string{src.Abbrv}}
	err := pool.QueryRow(ctx,
		`INSERT INTO definitions (wordform_id, text) VALUES ($1, $2) RETURNING id`,
		wordformID, text,
	).Scan(&d.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedDefinition: %v", err)
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO definition_citations (definition_id, source_abbrv) VALUES ($1, $2)`,
		d.ID, src.Abbrv,
	); err != nil {
		t.Fatalf("testhelper: SeedDefinition citation: %v", err)
	}
	return d
}

// SeedTargetKeyword indexes wordformID under a gloss-language keyword.
func SeedTargetKeyword(t *testing.T, pool *pgxpool.Pool, wordformID int64, keyword string) {
	t.Helper()
	if _, err := pool.Exec(context.Background(),
		`INSERT INTO target_language_keywords (text, wordform_id) VALUES ($1, $2)`,
		keyword, wordformID,
	); err != nil {
		t.Fatalf("testhelper: SeedTargetKeyword: %v", err)
	}
}

// SeedSourceKeyword indexes wordformID under a source-language keyword.
func SeedSourceKeyword(t *testing.T, pool *pgxpool.Pool, wordformID int64, keyword string) {
	t.Helper()
	if _, err := pool.Exec(context.Background(),
		`INSERT INTO source_language_keywords (text, wordform_id) VALUES ($1, $2)`,
		keyword, wordformID,
	); err != nil {
		t.Fatalf("testhelper: SeedSourceKeyword: %v", err)
	}
}
