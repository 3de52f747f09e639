package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/morphodict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/morphodict-backend/internal/adapter/postgres/definition"
	"github.com/heartmarshall/morphodict-backend/internal/adapter/postgres/wordform"
	"github.com/heartmarshall/morphodict-backend/internal/config"
	"github.com/heartmarshall/morphodict-backend/internal/lexicon"
	"github.com/heartmarshall/morphodict-backend/internal/morph"
	"github.com/heartmarshall/morphodict-backend/internal/search"
)

// Components is the read-only dictionary state shared by the server and the
// operator CLI: one pool, the loaded analyzer, the lexicon and the search service.
type Components struct {
	Pool        *pgxpool.Pool
	Analyzer    *morph.Table
	Wordforms   *wordform.Repo
	Definitions *definition.Repo
	Lexicon     *lexicon.Accessor
	Search      *search.Service
}

// Build connects to the database and loads the analyzer table and the lexicon
// snapshot. Call Close when done.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	analyzer, err := morph.LoadTable(cfg.Lexicon.AnalyzerTablePath)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("load analyzer table: %w", err)
	}
	logger.Info("analyzer table loaded",
		slog.String("path", cfg.Lexicon.AnalyzerTablePath),
		slog.Int("entries", analyzer.Size()),
	)

	wordforms := wordform.New(pool)

	opts := lexicon.BuildOptions{RankingsPath: cfg.Lexicon.MorphemeRankingsPath}
	if cfg.Search.Preverbs {
		opts.Preverbs = wordforms
	}
	snap, err := lexicon.Build(ctx, opts, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("build lexicon snapshot: %w", err)
	}

	lex := lexicon.NewAccessor(wordforms, snap)

	return &Components{
		Pool:        pool,
		Analyzer:    analyzer,
		Wordforms:   wordforms,
		Definitions: definition.New(pool),
		Lexicon:     lex,
		Search:      search.NewService(logger, lex, analyzer, cfg.Search),
	}, nil
}

// Close releases the database pool.
func (c *Components) Close() {
	c.Pool.Close()
}
