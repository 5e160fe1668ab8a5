package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"budgetflow/internal/cli"
	applog "budgetflow/internal/log"
)

var (
	flagCurrency string
	flagVerbose  bool
	flagWidth    int
)

var rootCmd = &cobra.Command{
	Use:           "budgetctl",
	Short:         "Marketing budget periods from the command line",
	Long:          "List, show, save and export monthly marketing budget periods.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "  Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCurrency, "currency", "", "Currency code for amounts (defaults to CURRENCY)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log store and broker activity to stderr")
	rootCmd.PersistentFlags().IntVar(&flagWidth, "width", 40, "Bar chart width in columns")
}

// openApp loads configuration and wires the store and service the same
// way the server does. Logs go to stderr so stdout stays clean.
func openApp(ctx context.Context) (*cli.App, error) {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, err
	}

	level := slog.LevelError
	if flagVerbose {
		level = applog.ParseLevel(cfg.LogLevel)
	}
	logger := applog.New(applog.Config{
		Level:  level,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
	applog.SetDefault(logger)

	if flagCurrency != "" {
		cfg.Currency = flagCurrency
	}
	return cli.BuildApp(ctx, cfg, logger)
}
