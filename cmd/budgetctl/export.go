package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budgetflow/internal/core"
	"budgetflow/internal/export"
)

var (
	flagFormat string
	flagOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <key>",
	Short: "Write one period to a csv, json, yaml or pdf file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagFormat, "format", "f", "csv", "Output format: csv, json, yaml or pdf")
	exportCmd.Flags().StringVarP(&flagOut, "out", "o", ".", "Output directory")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	key := args[0]
	if _, _, err := core.ParsePeriodKey(key); err != nil {
		return err
	}
	format, err := export.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	view, found, err := app.Service.View(cmd.Context(), key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("period %s not found", key)
	}

	path, err := export.ToFile(flagOut, format, view, app.Config.Currency)
	if err != nil {
		return err
	}
	fmt.Printf("  Exported %s to %s\n", key, path)
	return nil
}
