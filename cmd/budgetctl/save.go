package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budgetflow/internal/core"
)

var (
	flagYear     int
	flagMonth    int
	flagBudgets  []string
	flagExpenses []string
	flagComment  string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Create or replace a period",
	Long: "Create or replace the period for --year and --month. Categories not\n" +
		"given are saved as zero. Example:\n\n" +
		"  budgetctl save --year 2025 --month 3 --budget \"Brand Marketing=1000\" --expense \"Social ads=300\"",
	Args: cobra.NoArgs,
	RunE: runSave,
}

func init() {
	saveCmd.Flags().IntVar(&flagYear, "year", 0, "Year of the period")
	saveCmd.Flags().IntVar(&flagMonth, "month", 0, "Month of the period (1-12)")
	saveCmd.Flags().StringArrayVar(&flagBudgets, "budget", nil, `Budget amount as "Category=Value" (repeatable)`)
	saveCmd.Flags().StringArrayVar(&flagExpenses, "expense", nil, `Expense amount as "Category=Value" (repeatable)`)
	saveCmd.Flags().StringVar(&flagComment, "comment", "", "Free-text comment")
	_ = saveCmd.MarkFlagRequired("year")
	_ = saveCmd.MarkFlagRequired("month")
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, _ []string) error {
	budgets, err := parseAssignments(flagBudgets, core.BudgetCategories)
	if err != nil {
		return fmt.Errorf("--budget: %w", err)
	}
	expenses, err := parseAssignments(flagExpenses, core.ExpenseCategories)
	if err != nil {
		return fmt.Errorf("--expense: %w", err)
	}

	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	key, err := app.Service.Save(cmd.Context(), flagYear, flagMonth, budgets, expenses, flagComment)
	if err != nil {
		return err
	}
	fmt.Printf("  Saved %s\n", key)
	return nil
}
