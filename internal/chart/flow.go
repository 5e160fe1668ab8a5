// Package chart turns period amounts into renderer-ready chart data.
package chart

import "budgetflow/internal/core"

// Flow is the node and link data a Sankey renderer consumes. Source, Target
// and Value are index-aligned by link position.
type Flow struct {
	Labels []string `json:"labels" yaml:"labels"`
	Source []int    `json:"source" yaml:"source"`
	Target []int    `json:"target" yaml:"target"`
	Value  []int64  `json:"value" yaml:"value"`
}

// BuildFlow lays out flows from every budget category into a single total
// node and from that node out to every expense category.
//
// With B budgets and E expenses the labels are the budget names, then
// core.TotalBudgetLabel at index B, then the expense names. Links [0,B) go
// budget i -> B, links [B,B+E) go B -> B+1+j. Zero amounts still produce a
// link. Input order is preserved, so equal inputs give equal output.
func BuildFlow(budgets, expenses core.Amounts) Flow {
	b, e := len(budgets), len(expenses)
	total := b

	f := Flow{
		Labels: make([]string, 0, b+1+e),
		Source: make([]int, 0, b+e),
		Target: make([]int, 0, b+e),
		Value:  make([]int64, 0, b+e),
	}

	for i, a := range budgets {
		f.Labels = append(f.Labels, a.Category)
		f.Source = append(f.Source, i)
		f.Target = append(f.Target, total)
		f.Value = append(f.Value, a.Value)
	}
	f.Labels = append(f.Labels, core.TotalBudgetLabel)
	for j, a := range expenses {
		f.Labels = append(f.Labels, a.Category)
		f.Source = append(f.Source, total)
		f.Target = append(f.Target, total+1+j)
		f.Value = append(f.Value, a.Value)
	}
	return f
}

// Links returns the number of links in the flow.
func (f Flow) Links() int {
	return len(f.Value)
}
