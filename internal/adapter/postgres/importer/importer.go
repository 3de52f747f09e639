// Package importer loads a JSON dictionary export into the lexicon tables.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"

	postgres "github.com/heartmarshall/morphodict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/morphodict-backend/internal/domain"
	"github.com/heartmarshall/morphodict-backend/pkg/datafile"
	"github.com/heartmarshall/morphodict-backend/pkg/stem"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// maxTargetKeywordLength mirrors the target_language_keywords.text check.
const maxTargetKeywordLength = 20

// Dictionary is the import file layout.
type Dictionary struct {
	Sources []Source `json:"sources"`
	Entries []Entry  `json:"entries"`
}

// Source is a bibliographic record cited by senses.
type Source struct {
	Abbrv     string `json:"abbrv"`
	Title     string `json:"title"`
	Author    string `json:"author,omitempty"`
	Editor    string `json:"editor,omitempty"`
	Year      *int   `json:"year,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	City      string `json:"city,omitempty"`
}

// Entry is one wordform. An entry without FormOf is a lemma; FormOf names
// the slug of the lemma it inflects.
type Entry struct {
	Head     string   `json:"head"`
	Slug     string   `json:"slug,omitempty"`
	Analysis string   `json:"analysis,omitempty"`
	Paradigm *string  `json:"paradigm,omitempty"`
	POS      string   `json:"pos,omitempty"`
	Stem     string   `json:"stem,omitempty"`
	FormOf   string   `json:"formOf,omitempty"`
	Senses   []Sense  `json:"senses,omitempty"`
	Keywords Keywords `json:"keywords,omitempty"`
}

// Sense is one definition.
type Sense struct {
	Definition string   `json:"definition"`
	Sources    []string `json:"sources"`
	// AutoTranslated marks a machine-translated sense. It references the
	// first earlier manual sense of the same entry, else the first manual
	// sense of the entry's lemma.
	AutoTranslated bool `json:"autoTranslated,omitempty"`
}

// Keywords overrides the derived keyword indexes. Nil slices mean "derive":
// target keywords are stemmed from the definitions, source keywords are the
// head and its diacritic-free spelling.
type Keywords struct {
	Target []string `json:"target,omitempty"`
	Source []string `json:"source,omitempty"`
}

// Stats summarizes one import.
type Stats struct {
	Sources        int
	Lemmas         int
	Inflections    int
	Definitions    int
	TargetKeywords int
	SourceKeywords int
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Importer writes dictionaries in a single transaction.
type Importer struct {
	db  postgres.Querier
	txm txRunner
	log *slog.Logger
}

// New creates an importer.
func New(db postgres.Querier, txm txRunner, logger *slog.Logger) *Importer {
	return &Importer{db: db, txm: txm, log: logger.With("service", "importer")}
}

// ImportFile decodes path (optionally .gz or .zst) and imports it.
func (im *Importer) ImportFile(ctx context.Context, path string) (Stats, error) {
	rc, err := datafile.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer rc.Close()

	return im.Import(ctx, rc)
}

// Import decodes a Dictionary from r and imports it.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Stats, error) {
	var d Dictionary
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Stats{}, fmt.Errorf("decode dictionary: %w", err)
	}
	return im.ImportDictionary(ctx, d)
}

// ImportDictionary validates d and writes it. Nothing is written when
// validation fails or any statement errors.
func (im *Importer) ImportDictionary(ctx context.Context, d Dictionary) (Stats, error) {
	if err := Validate(d); err != nil {
		return Stats{}, err
	}

	var stats Stats
	err := im.txm.RunInTx(ctx, func(txCtx context.Context) error {
		stats = Stats{}
		q := postgres.QuerierFromCtx(txCtx, im.db)

		for _, s := range d.Sources {
			if err := upsertSource(txCtx, q, s); err != nil {
				return err
			}
			stats.Sources++
		}

		lemmaIDs := make(map[string]int64)
		lemmaDefs := make(map[string]*int64)
		for _, e := range d.Entries {
			if e.FormOf != "" {
				continue
			}
			id, err := insertWordform(txCtx, q, e, 0)
			if err != nil {
				return err
			}
			lemmaIDs[e.Slug] = id
			stats.Lemmas++
			firstManual, err := insertChildren(txCtx, q, id, e, nil, &stats)
			if err != nil {
				return err
			}
			lemmaDefs[e.Slug] = firstManual
		}

		for _, e := range d.Entries {
			if e.FormOf == "" {
				continue
			}
			lemmaID, ok := lemmaIDs[e.FormOf]
			if !ok {
				return fmt.Errorf("entry %q: %w", e.Head, domain.NewValidationError("formOf", "unknown lemma slug "+e.FormOf))
			}
			id, err := insertWordform(txCtx, q, e, lemmaID)
			if err != nil {
				return err
			}
			stats.Inflections++
			if _, err := insertChildren(txCtx, q, id, e, lemmaDefs[e.FormOf], &stats); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	im.log.InfoContext(ctx, "dictionary imported",
		slog.Int("sources", stats.Sources),
		slog.Int("lemmas", stats.Lemmas),
		slog.Int("inflections", stats.Inflections),
		slog.Int("definitions", stats.Definitions),
		slog.Int("target_keywords", stats.TargetKeywords),
		slog.Int("source_keywords", stats.SourceKeywords),
	)
	return stats, nil
}

// Validate checks a dictionary before any write.
func Validate(d Dictionary) error {
	var errs []domain.FieldError
	add := func(field, msg string) {
		errs = append(errs, domain.FieldError{Field: field, Message: msg})
	}

	for i, s := range d.Sources {
		if s.Abbrv == "" || len(s.Abbrv) > 8 {
			add(fmt.Sprintf("sources[%d].abbrv", i), "must be 1-8 characters")
		}
		if strings.TrimSpace(s.Title) == "" {
			add(fmt.Sprintf("sources[%d].title", i), "required")
		}
	}

	lemmaHasManual := make(map[string]bool)
	for _, e := range d.Entries {
		if e.FormOf == "" && firstManualSense(e) >= 0 {
			lemmaHasManual[e.Slug] = true
		}
	}

	slugs := make(map[string]struct{})
	for i, e := range d.Entries {
		field := fmt.Sprintf("entries[%d]", i)
		n := utf8.RuneCountInString(e.Head)
		if n == 0 || n > domain.MaxWordformLength {
			add(field+".head", fmt.Sprintf("must be 1-%d characters", domain.MaxWordformLength))
		}
		if e.Analysis != "" {
			if _, ok := domain.ParseAnalysis(e.Analysis); !ok {
				add(field+".analysis", "unparseable analysis")
			}
		}
		if e.FormOf == "" {
			if e.Slug == "" {
				add(field+".slug", "required for lemmas")
			} else if _, dup := slugs[e.Slug]; dup {
				add(field+".slug", "duplicate slug "+e.Slug)
			}
			slugs[e.Slug] = struct{}{}
		}
		manual := firstManualSense(e)
		for j, s := range e.Senses {
			if strings.TrimSpace(s.Definition) == "" {
				add(fmt.Sprintf("%s.senses[%d].definition", field, j), "required")
			}
			if s.AutoTranslated && (manual < 0 || manual > j) && !lemmaHasManual[e.FormOf] {
				add(fmt.Sprintf("%s.senses[%d].autoTranslated", field, j), "no manual sense to translate from")
			}
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func upsertSource(ctx context.Context, q postgres.Querier, s Source) error {
	sql, args, err := psql.Insert("dictionary_sources").
		Columns("abbrv", "title", "author", "editor", "year", "publisher", "city").
		Values(s.Abbrv, s.Title, s.Author, s.Editor, s.Year, s.Publisher, s.City).
		Suffix("ON CONFLICT (abbrv) DO UPDATE SET title = EXCLUDED.title, author = EXCLUDED.author, " +
			"editor = EXCLUDED.editor, year = EXCLUDED.year, publisher = EXCLUDED.publisher, city = EXCLUDED.city").
		ToSql()
	if err != nil {
		return fmt.Errorf("build source insert: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "dictionary_source", s.Abbrv)
	}
	return nil
}

// insertWordform inserts e; lemmaID zero marks e as a lemma referencing itself.
func insertWordform(ctx context.Context, q postgres.Querier, e Entry, lemmaID int64) (int64, error) {
	var rawAnalysis *string
	wordClass := ""
	if a, ok := domain.ParseAnalysis(e.Analysis); ok {
		smushed := a.Smushed()
		rawAnalysis = &smushed
		wordClass = a.WordClass()
	}

	var slug *string
	if e.Slug != "" {
		slug = &e.Slug
	}

	isLemma := lemmaID == 0
	var lemmaRef any = lemmaID
	if isLemma {
		lemmaRef = nil
	}

	sql, args, err := psql.Insert("wordforms").
		Columns("text", "raw_analysis", "word_class", "paradigm", "is_lemma", "lemma_id", "slug",
			"linguist_info_stem", "linguist_info_pos").
		Values(domain.NormalizeText(e.Head), rawAnalysis, wordClass, e.Paradigm, isLemma, lemmaRef, slug, e.Stem, e.POS).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build wordform insert: %w", err)
	}

	var id int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, postgres.MapError(err, "wordform", e.Head)
	}

	if isLemma {
		if _, err := q.Exec(ctx, `UPDATE wordforms SET lemma_id = id WHERE id = $1`, id); err != nil {
			return 0, postgres.MapError(err, "wordform", id)
		}
	}
	return id, nil
}

// insertChildren writes e's definitions and keywords and returns the id of
// its first manual definition, if any. Auto-translated senses fall back to
// lemmaDef when no manual sense precedes them.
func insertChildren(ctx context.Context, q postgres.Querier, wordformID int64, e Entry, lemmaDef *int64, stats *Stats) (*int64, error) {
	var firstManual *int64
	for _, s := range e.Senses {
		var autoSource *int64
		if s.AutoTranslated {
			autoSource = firstManual
			if autoSource == nil {
				autoSource = lemmaDef
			}
			if autoSource == nil {
				return nil, fmt.Errorf("entry %q: %w", e.Head,
					domain.NewValidationError("senses.autoTranslated", "no manual sense to translate from"))
			}
		}

		sql, args, err := psql.Insert("definitions").
			Columns("wordform_id", "text", "auto_translation_source_id").
			Values(wordformID, s.Definition, autoSource).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build definition insert: %w", err)
		}

		var defID int64
		if err := q.QueryRow(ctx, sql, args...).Scan(&defID); err != nil {
			return nil, postgres.MapError(err, "definition", e.Head)
		}
		stats.Definitions++
		if !s.AutoTranslated && firstManual == nil {
			id := defID
			firstManual = &id
		}

		for _, abbrv := range uniqueStrings(s.Sources) {
			if _, err := q.Exec(ctx,
				`INSERT INTO definition_citations (definition_id, source_abbrv) VALUES ($1, $2)`,
				defID, abbrv,
			); err != nil {
				return nil, postgres.MapError(err, "definition_citation", abbrv)
			}
		}
	}

	for _, kw := range targetKeywords(e) {
		if _, err := q.Exec(ctx,
			`INSERT INTO target_language_keywords (text, wordform_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			kw, wordformID,
		); err != nil {
			return nil, postgres.MapError(err, "target_language_keyword", kw)
		}
		stats.TargetKeywords++
	}

	for _, kw := range sourceKeywords(e) {
		if _, err := q.Exec(ctx,
			`INSERT INTO source_language_keywords (text, wordform_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			kw, wordformID,
		); err != nil {
			return nil, postgres.MapError(err, "source_language_keyword", kw)
		}
		stats.SourceKeywords++
	}
	return firstManual, nil
}

// targetKeywords returns explicit keywords or stems of the non-automatic definitions.
func targetKeywords(e Entry) []string {
	if e.Keywords.Target != nil {
		return uniqueStrings(e.Keywords.Target)
	}

	var out []string
	for _, s := range e.Senses {
		if s.AutoTranslated {
			continue
		}
		for _, kw := range stem.Keywords(s.Definition) {
			if utf8.RuneCountInString(kw) <= maxTargetKeywordLength {
				out = append(out, kw)
			}
		}
	}
	return uniqueStrings(out)
}

// sourceKeywords returns explicit keywords or the head with and without diacritics.
func sourceKeywords(e Entry) []string {
	if e.Keywords.Source != nil {
		return uniqueStrings(e.Keywords.Source)
	}
	head := domain.NormalizeText(e.Head)
	return uniqueStrings([]string{head, domain.FoldForSearch(head)})
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// firstManualSense returns the index of e's first manual sense, or -1.
func firstManualSense(e Entry) int {
	for i, s := range e.Senses {
		if !s.AutoTranslated {
			return i
		}
	}
	return -1
}
