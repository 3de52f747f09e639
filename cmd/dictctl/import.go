package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/morphodict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/morphodict-backend/internal/adapter/postgres/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <dictionary.json[.gz|.zst]>",
	Short: "Import a dictionary JSON file in one transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	cfg, logger, err := loadDatabase()
	if err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	im := importer.New(pool, postgres.NewTxManager(pool), logger)
	stats, err := im.ImportFile(ctx, args[0])
	if err != nil {
		return err
	}

	logger.Info("import completed",
		slog.String("file", args[0]),
		slog.Int("lemmas", stats.Lemmas),
		slog.Int("inflections", stats.Inflections),
		slog.Int("definitions", stats.Definitions),
	)
	fmt.Fprintf(cmd.OutOrStdout(),
		"sources=%d lemmas=%d inflections=%d definitions=%d target_keywords=%d source_keywords=%d\n",
		stats.Sources, stats.Lemmas, stats.Inflections, stats.Definitions, stats.TargetKeywords, stats.SourceKeywords)
	return nil
}
