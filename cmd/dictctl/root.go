package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/morphodict-backend/internal/app"
	"github.com/heartmarshall/morphodict-backend/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "dictctl",
	Short:         "Operate the morphological dictionary",
	Version:       app.BuildVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if configPath != "" {
			return os.Setenv("CONFIG_PATH", configPath)
		}
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate("dictctl version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (overrides CONFIG_PATH)")
}

// signalContext is cancelled on Ctrl-C so long imports and evaluations stop cleanly.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// loadFull loads the complete configuration and logger.
func loadFull() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewLogger(cfg.Log), nil
}

// loadDatabase loads configuration for database-only commands.
func loadDatabase() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewLogger(cfg.Log), nil
}
