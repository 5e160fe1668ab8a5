package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetflow/internal/core"
)

func TestBuildFlowShape(t *testing.T) {
	budgets := core.Amounts{{Category: "A", Value: 100}, {Category: "B", Value: 200}}
	expenses := core.Amounts{{Category: "X", Value: 50}, {Category: "Y", Value: 80}}

	f := BuildFlow(budgets, expenses)

	assert.Equal(t, []string{"A", "B", "Total budget", "X", "Y"}, f.Labels)
	assert.Equal(t, []int{0, 1, 2, 2}, f.Source)
	assert.Equal(t, []int{2, 2, 3, 4}, f.Target)
	assert.Equal(t, []int64{100, 200, 50, 80}, f.Value)
	assert.Equal(t, 4, f.Links())
}

func TestBuildFlowEmptyExpenses(t *testing.T) {
	f := BuildFlow(core.Amounts{{Category: "A", Value: 10}}, nil)

	assert.Equal(t, []string{"A", "Total budget"}, f.Labels)
	assert.Equal(t, []int{0}, f.Source)
	assert.Equal(t, []int{1}, f.Target)
	assert.Equal(t, []int64{10}, f.Value)
}

func TestBuildFlowEmptyBudgets(t *testing.T) {
	f := BuildFlow(nil, core.Amounts{{Category: "X", Value: 5}, {Category: "Y", Value: 0}})

	assert.Equal(t, []string{"Total budget", "X", "Y"}, f.Labels)
	assert.Equal(t, []int{0, 0}, f.Source)
	assert.Equal(t, []int{1, 2}, f.Target)
	assert.Equal(t, []int64{5, 0}, f.Value, "zero amounts still produce a link")
}

func TestBuildFlowBothEmpty(t *testing.T) {
	f := BuildFlow(nil, nil)
	assert.Equal(t, []string{"Total budget"}, f.Labels)
	assert.Empty(t, f.Source)
	assert.Empty(t, f.Target)
	assert.Empty(t, f.Value)
}

func TestBuildFlowFullCategorySets(t *testing.T) {
	budgets := core.BudgetCategories.Zero()
	expenses := core.ExpenseCategories.Zero()
	f := BuildFlow(budgets, expenses)

	b, e := len(core.BudgetCategories), len(core.ExpenseCategories)
	require.Len(t, f.Labels, b+1+e)
	require.Equal(t, b+e, f.Links())
	assert.Equal(t, core.TotalBudgetLabel, f.Labels[b])
	for i := 0; i < b; i++ {
		assert.Equal(t, i, f.Source[i])
		assert.Equal(t, b, f.Target[i])
	}
	for j, name := range core.ExpenseCategories {
		assert.Equal(t, b, f.Source[b+j])
		assert.Equal(t, name, f.Labels[f.Target[b+j]])
	}
}

func TestBuildFlowDeterministic(t *testing.T) {
	budgets := core.Amounts{{Category: "A", Value: 3}, {Category: "B", Value: 1}}
	expenses := core.Amounts{{Category: "Y", Value: 2}, {Category: "X", Value: 2}}

	first := BuildFlow(budgets, expenses)
	second := BuildFlow(budgets, expenses)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"A", "B", "Total budget", "Y", "X"}, first.Labels, "input order is kept")
}

func TestBuildBar(t *testing.T) {
	c := BuildBar(core.Amounts{
		{Category: "Brand Marketing", Value: 100},
		{Category: "Digital Marketing", Value: 300},
		{Category: "Other budget", Value: 0},
	})

	require.Len(t, c.Bars, 3)
	assert.Equal(t, int64(400), c.Total)
	assert.Equal(t, int64(300), c.Max)
	assert.Equal(t, "25.0", c.Bars[0].Share)
	assert.Equal(t, "75.0", c.Bars[1].Share)
	assert.Equal(t, "0.0", c.Bars[2].Share)
	assert.Equal(t, 33, c.Bars[0].Width)
	assert.Equal(t, 100, c.Bars[1].Width)
	assert.Equal(t, 0, c.Bars[2].Width)
	assert.Equal(t, "Digital Marketing", c.Bars[1].Label)
}

func TestBuildBarAllZero(t *testing.T) {
	c := BuildBar(core.BudgetCategories.Zero())
	require.Len(t, c.Bars, len(core.BudgetCategories))
	for _, b := range c.Bars {
		assert.Equal(t, "0.0", b.Share)
		assert.Zero(t, b.Width)
	}
}

func TestBuildBarSmallValueVisible(t *testing.T) {
	c := BuildBar(core.Amounts{{Category: "A", Value: 1}, {Category: "B", Value: 1000}})
	assert.Equal(t, 2, c.Bars[0].Width)
	assert.Equal(t, "0.1", c.Bars[0].Share)
}
