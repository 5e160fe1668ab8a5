package core

// Summary holds the three headline metrics of a period.
type Summary struct {
	TotalBudget     int64 `json:"total_budget" yaml:"total_budget"`
	TotalExpense    int64 `json:"total_expense" yaml:"total_expense"`
	RemainingBudget int64 `json:"remaining_budget" yaml:"remaining_budget"` // negative means overspend
}

// Summarize computes the period metrics from a record.
func Summarize(r PeriodRecord) Summary {
	budget := r.Budgets.Total()
	expense := r.Expenses.Total()
	return Summary{
		TotalBudget:     budget,
		TotalExpense:    expense,
		RemainingBudget: budget - expense,
	}
}

// Overspent reports whether expenses exceed the budget.
func (s Summary) Overspent() bool {
	return s.RemainingBudget < 0
}
