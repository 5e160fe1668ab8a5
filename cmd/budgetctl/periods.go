package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budgetflow/internal/cli"
)

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List saved periods, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runPeriods,
}

func init() {
	rootCmd.AddCommand(periodsCmd)
}

func runPeriods(cmd *cobra.Command, _ []string) error {
	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	keys, err := app.Service.Periods(cmd.Context())
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Println("\n  No periods saved yet.")
		fmt.Println("  Use `budgetctl save` or the web form to add one.")
		return nil
	}

	rows := make([][]string, 0, len(keys))
	for i, k := range keys {
		rows = append(rows, []string{k, fmt.Sprintf("%d", i+1)})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Periods",
		Headers: []string{"Key", "#"},
		Rows:    rows,
	}))
	return nil
}
