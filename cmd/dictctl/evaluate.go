package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/morphodict-backend/internal/app"
	"github.com/heartmarshall/morphodict-backend/internal/quality"
)

var evaluateWorkers int

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <pairs.tsv>",
	Short: "Measure search quality against query/expected-lemma pairs",
	Long: `Run every query in a query<TAB>expected-lemma file concurrently and report
the rank of the expected lemma, top-1, top-3 and mean reciprocal rank.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().IntVarP(&evaluateWorkers, "workers", "w", 8, "Concurrent searches")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	pairs, err := quality.ReadPairs(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	cfg, logger, err := loadFull()
	if err != nil {
		return err
	}

	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	report, err := quality.NewEvaluator(logger, c.Search, evaluateWorkers).Evaluate(ctx, pairs)
	if err != nil {
		return err
	}
	return report.WriteTSV(cmd.OutOrStdout())
}
