package google

import (
	"fmt"
	"strings"

	"budgetflow/internal/core"
)

const (
	colPeriod    = "Period"
	colComment   = "Comment"
	colTotalBud  = "Total budget"
	colTotalExp  = "Total expense"
	colRemaining = "Remaining budget"
)

// periodHeader is the first row of the periods sheet. Budget and expense
// columns follow the category declaration order.
func periodHeader() []string {
	h := []string{colPeriod, colComment}
	h = append(h, core.BudgetCategories...)
	h = append(h, core.ExpenseCategories...)
	return append(h, colTotalBud, colTotalExp, colRemaining)
}

// periodRow flattens a record into one sheet row matching periodHeader.
func periodRow(rec core.PeriodRecord) []any {
	budgets := rec.Budgets.Complete(core.BudgetCategories)
	expenses := rec.Expenses.Complete(core.ExpenseCategories)
	sum := core.Summarize(core.PeriodRecord{Budgets: budgets, Expenses: expenses})

	row := make([]any, 0, 2+len(budgets)+len(expenses)+3)
	row = append(row, rec.Key, rec.Comment)
	for _, a := range budgets {
		row = append(row, a.Value)
	}
	for _, a := range expenses {
		row = append(row, a.Value)
	}
	return append(row, sum.TotalBudget, sum.TotalExpense, sum.RemainingBudget)
}

// parsePeriodRow rebuilds a record from a row using the header to locate
// columns, so reordered or extra columns in the sheet are tolerated.
func parsePeriodRow(header, row []string) (core.PeriodRecord, error) {
	col := indexOf(header, colPeriod)
	if col == -1 {
		return core.PeriodRecord{}, fmt.Errorf("unexpected periods header: missing %q; got headers=%v", colPeriod, header)
	}
	rec := core.PeriodRecord{
		Key:     safeGet(row, col),
		Comment: safeGet(row, indexOf(header, colComment)),
	}
	var err error
	if rec.Budgets, err = parseAmounts(header, row, core.BudgetCategories); err != nil {
		return core.PeriodRecord{}, fmt.Errorf("period %s budgets: %w", rec.Key, err)
	}
	if rec.Expenses, err = parseAmounts(header, row, core.ExpenseCategories); err != nil {
		return core.PeriodRecord{}, fmt.Errorf("period %s expenses: %w", rec.Key, err)
	}
	return rec, nil
}

func parseAmounts(header, row []string, categories core.Categories) (core.Amounts, error) {
	out := categories.Zero()
	for i := range out {
		v, err := core.ParseAmount(safeGet(row, indexOf(header, out[i].Category)))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", out[i].Category, err)
		}
		out[i].Value = v
	}
	return out, nil
}

// columnName converts a 1-based column index into A1 notation letters.
func columnName(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(list []string, want string) int {
	for i, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return i
		}
	}
	return -1
}

func safeGet(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
