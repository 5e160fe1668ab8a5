// Package storetest holds behaviour tests shared by every PeriodStore.
package storetest

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetflow/internal/core"
	"budgetflow/internal/store"
)

// Factory returns an empty store. Cleanup is registered on t.
type Factory func(t *testing.T) store.PeriodStore

func sampleBudgets(base int64) core.Amounts {
	out := core.BudgetCategories.Zero()
	for i := range out {
		out[i].Value = base * int64(i+1)
	}
	return out
}

func sampleExpenses(base int64) core.Amounts {
	out := core.ExpenseCategories.Zero()
	for i := range out {
		out[i].Value = base + int64(i)
	}
	return out
}

type options struct {
	completes bool
}

// Option adjusts which variant of the contract Run checks.
type Option func(*options)

// CompletesCategories is for stores with a fixed column per category. Such
// stores return every enumerated category in declaration order instead of
// the submitted subset.
func CompletesCategories() Option {
	return func(o *options) { o.completes = true }
}

// Run exercises the PeriodStore contract against stores built by newStore.
// Stores that also implement store.PeriodStamper get their stamps checked.
func Run(t *testing.T, newStore Factory, opts ...Option) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	t.Run("round trip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		budgets, expenses := sampleBudgets(100), sampleExpenses(10)

		require.NoError(t, s.Save(ctx, "2025_March", budgets, expenses, "launch month"))

		rec, found, err := s.Get(ctx, "2025_March")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "2025_March", rec.Key)
		assert.Equal(t, budgets, rec.Budgets)
		assert.Equal(t, expenses, rec.Expenses)
		assert.Equal(t, "launch month", rec.Comment)
	})

	t.Run("overwrite replaces whole record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, "2025_April", sampleBudgets(100), sampleExpenses(10), "first"))
		second := sampleBudgets(7)
		require.NoError(t, s.Save(ctx, "2025_April", second, core.ExpenseCategories.Zero(), ""))

		rec, found, err := s.Get(ctx, "2025_April")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, second, rec.Budgets)
		assert.Equal(t, core.ExpenseCategories.Zero(), rec.Expenses)
		assert.Empty(t, rec.Comment)

		keys, err := s.ListKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2025_April"}, keys)
	})

	t.Run("idempotent save", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			require.NoError(t, s.Save(ctx, "2025_May", sampleBudgets(1), sampleExpenses(1), "same"))
		}
		keys, err := s.ListKeys(ctx)
		require.NoError(t, err)
		assert.Len(t, keys, 1)
	})

	t.Run("not found", func(t *testing.T) {
		s := newStore(t)
		rec, found, err := s.Get(context.Background(), "unknown_key")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, core.PeriodRecord{}, rec)
	})

	t.Run("empty list", func(t *testing.T) {
		s := newStore(t)
		keys, err := s.ListKeys(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, keys)
		assert.Empty(t, keys)
	})

	t.Run("list keys", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, k := range []string{"2025_June", "2025_January", "2026_February"} {
			require.NoError(t, s.Save(ctx, k, sampleBudgets(1), sampleExpenses(1), ""))
		}
		keys, err := s.ListKeys(ctx)
		require.NoError(t, err)
		sort.Strings(keys)
		assert.Equal(t, []string{"2025_January", "2025_June", "2026_February"}, keys)
	})

	t.Run("preserves submitted order", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		budgets := core.Amounts{{Category: "Other budget", Value: 5}, {Category: "Brand Marketing", Value: 9}}
		require.NoError(t, s.Save(ctx, "2025_July", budgets, nil, ""))

		rec, found, err := s.Get(ctx, "2025_July")
		require.NoError(t, err)
		require.True(t, found)
		if o.completes {
			assert.Equal(t, budgets.Complete(core.BudgetCategories), rec.Budgets)
			assert.Equal(t, core.ExpenseCategories.Zero(), rec.Expenses)
			return
		}
		assert.Equal(t, budgets, rec.Budgets)
		assert.Empty(t, rec.Expenses)
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Save(ctx, "2025_August", sampleBudgets(1), sampleExpenses(1), ""))

		rec, _, err := s.Get(ctx, "2025_August")
		require.NoError(t, err)
		rec.Budgets[0].Value = 999_999

		again, _, err := s.Get(ctx, "2025_August")
		require.NoError(t, err)
		assert.Equal(t, sampleBudgets(1), again.Budgets)
	})

	t.Run("updated at follows saves", func(t *testing.T) {
		s := newStore(t)
		st, ok := s.(store.PeriodStamper)
		if !ok {
			t.Skip("store does not report update times")
		}
		ctx := context.Background()

		_, found, err := st.UpdatedAt(ctx, "2025_October")
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, s.Save(ctx, "2025_October", sampleBudgets(1), sampleExpenses(1), ""))
		stamp, found, err := st.UpdatedAt(ctx, "2025_October")
		require.NoError(t, err)
		require.True(t, found)
		assert.False(t, stamp.IsZero())

		rec, _, err := s.Get(ctx, "2025_October")
		require.NoError(t, err)
		assert.True(t, stamp.Equal(rec.UpdatedAt), "stamp %v, record %v", stamp, rec.UpdatedAt)
	})

	t.Run("concurrent saves", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- s.Save(ctx, "2025_September", sampleBudgets(int64(i)), sampleExpenses(int64(i)), "")
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
		rec, found, err := s.Get(ctx, "2025_September")
		require.NoError(t, err)
		require.True(t, found)
		assert.Len(t, rec.Budgets, len(core.BudgetCategories))
		assert.Len(t, rec.Expenses, len(core.ExpenseCategories))
	})
}
