package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budgetflow/internal/cli"
	"budgetflow/internal/core"
)

var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show metrics, flow links and budget bars for one period",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	key := args[0]
	if _, _, err := core.ParsePeriodKey(key); err != nil {
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

	currency := app.Config.Currency
	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET  " + key))
	fmt.Println()
	fmt.Print(cli.RenderSummary(view.Summary, currency))
	if view.Record.Comment != "" {
		fmt.Printf("\n  %s\n", view.Record.Comment)
	}
	fmt.Println()
	if view.Flow.Links() == 0 {
		fmt.Println("  No flows: every amount is zero.")
	} else {
		fmt.Print(cli.RenderFlowTable(view.Flow, currency))
	}
	fmt.Println()
	fmt.Print(cli.RenderBarChart(view.Bar, currency, flagWidth))
	return nil
}
