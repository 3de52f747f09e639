package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/morphodict-backend/internal/app"
	"github.com/heartmarshall/morphodict-backend/internal/search"
	"github.com/heartmarshall/morphodict-backend/internal/transport/dataloader"
)

var (
	searchVerbose bool
	searchAuto    string
	searchSources []string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run one search and print the ranked results",
	Long: `Run one search against the configured dictionary.

Directives may be embedded in the query:
  dictctl search "verbose:on atchakosuk"
  dictctl search --auto yes minôs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVarP(&searchVerbose, "verbose", "v", false, "Show match evidence and diagnostics")
	searchCmd.Flags().StringVar(&searchAuto, "auto", "", "Include auto-translated definitions (yes/no)")
	searchCmd.Flags().StringSliceVar(&searchSources, "source", nil, "Only show results defined by these sources (e.g. CW,MD)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	opts := search.Options{Verbose: searchVerbose, Sources: searchSources}
	if searchAuto != "" {
		auto, ok := search.ParseFlag(searchAuto)
		if !ok {
			return fmt.Errorf("invalid --auto value %q", searchAuto)
		}
		opts.IncludeAutoDefinitions = &auto
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

	opts.Definitions = dataloader.NewLoaders(&dataloader.Repos{Definition: c.Definitions})

	resp, err := c.Search.Search(ctx, strings.Join(args, " "), opts)
	if err != nil {
		return err
	}
	return printResponse(cmd.OutOrStdout(), resp)
}
