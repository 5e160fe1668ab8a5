package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetflow/internal/core"
	"budgetflow/internal/store"
	"budgetflow/internal/store/storetest"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "periods.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepositoryContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.PeriodStore { return newTestRepo(t) })
}

func TestFailedSaveKeepsPreviousRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	good := core.BudgetCategories.Zero()
	good[0].Value = 100
	require.NoError(t, repo.Save(ctx, "2025_March", good, core.ExpenseCategories.Zero(), "ok"))

	// The amount CHECK constraint rejects the second row mid-transaction.
	bad := core.Amounts{{Category: "Brand Marketing", Value: 1}, {Category: "Digital Marketing", Value: -1}}
	err := repo.Save(ctx, "2025_March", bad, nil, "broken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrStore))

	rec, found, err := repo.Get(ctx, "2025_March")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, good, rec.Budgets)
	assert.Equal(t, "ok", rec.Comment)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "periods.db")
	v1, err := RunMigrations(path)
	require.NoError(t, err)
	v2, err := RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v1)
	assert.Equal(t, v1, v2)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "periods.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, "2026_January", core.BudgetCategories.Zero(), core.ExpenseCategories.Zero(), "persisted"))
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	n, err := repo.CountPeriods(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rec, found, err := repo.Get(ctx, "2026_January")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "persisted", rec.Comment)
	assert.False(t, rec.UpdatedAt.IsZero())
	require.NoError(t, repo.Ping(ctx))
}

func TestClosedDatabaseReportsStoreError(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Close())

	_, err := repo.ListKeys(context.Background())
	assert.True(t, errors.Is(err, store.ErrStore))

	_, _, err = repo.Get(context.Background(), "2025_March")
	assert.True(t, errors.Is(err, store.ErrStore))
}
