package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgetflow/internal/core"
	"budgetflow/internal/store"

	_ "modernc.org/sqlite"
)

var (
	_ store.PeriodStore   = (*SQLiteRepository)(nil)
	_ store.PeriodStamper = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer connection serialises upserts instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("SQLite period store ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save implements store.PeriodWriter. The header row and every amount row
// are written in one transaction, so a failure leaves the previous record.
func (r *SQLiteRepository) Save(ctx context.Context, key string, budgets, expenses core.Amounts, comment string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin save %s: %v", store.ErrStore, key, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q := r.queries.WithTx(tx)
	if err = q.UpsertPeriod(ctx, Period{
		PeriodKey: key,
		Comment:   comment,
		UpdatedAt: r.now().UTC().Format(time.RFC3339Nano),
	}); err != nil {
		return fmt.Errorf("%w: upsert period %s: %v", store.ErrStore, key, err)
	}
	if err = q.DeletePeriodAmounts(ctx, key); err != nil {
		return fmt.Errorf("%w: clear amounts %s: %v", store.ErrStore, key, err)
	}
	if err = insertAmounts(ctx, q, key, kindBudget, budgets); err != nil {
		return err
	}
	if err = insertAmounts(ctx, q, key, kindExpense, expenses); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit save %s: %v", store.ErrStore, key, err)
	}

	slog.InfoContext(ctx, "Period saved to SQLite",
		"period", key,
		"budgets", len(budgets),
		"expenses", len(expenses))
	return nil
}

func insertAmounts(ctx context.Context, q *Queries, key, kind string, amounts core.Amounts) error {
	for i, a := range amounts {
		err := q.InsertPeriodAmount(ctx, key, PeriodAmount{
			Kind:     kind,
			Position: int64(i),
			Category: a.Category,
			Amount:   a.Value,
		})
		if err != nil {
			return fmt.Errorf("%w: insert %s %q for %s: %v", store.ErrStore, kind, a.Category, key, err)
		}
	}
	return nil
}

// ListKeys implements store.PeriodLister.
func (r *SQLiteRepository) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := r.queries.ListPeriodKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list periods: %v", store.ErrStore, err)
	}
	return keys, nil
}

// Get implements store.PeriodReader.
func (r *SQLiteRepository) Get(ctx context.Context, key string) (core.PeriodRecord, bool, error) {
	p, err := r.queries.GetPeriod(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PeriodRecord{}, false, nil
	}
	if err != nil {
		return core.PeriodRecord{}, false, fmt.Errorf("%w: get period %s: %v", store.ErrStore, key, err)
	}

	rows, err := r.queries.GetPeriodAmounts(ctx, key)
	if err != nil {
		return core.PeriodRecord{}, false, fmt.Errorf("%w: get amounts %s: %v", store.ErrStore, key, err)
	}

	rec := core.PeriodRecord{Key: p.PeriodKey, Comment: p.Comment}
	if t, err := time.Parse(time.RFC3339Nano, p.UpdatedAt); err == nil {
		rec.UpdatedAt = t
	} else {
		slog.WarnContext(ctx, "Unparsable updated_at", "period", key, "value", p.UpdatedAt, "error", err)
	}
	for _, a := range rows {
		amount := core.Amount{Category: a.Category, Value: a.Amount}
		switch a.Kind {
		case kindBudget:
			rec.Budgets = append(rec.Budgets, amount)
		case kindExpense:
			rec.Expenses = append(rec.Expenses, amount)
		}
	}
	return rec, true, nil
}

// UpdatedAt implements store.PeriodStamper with a single-column lookup.
func (r *SQLiteRepository) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	raw, err := r.queries.GetPeriodUpdatedAt(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: get updated_at %s: %v", store.ErrStore, key, err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: parse updated_at %s: %v", store.ErrStore, key, err)
	}
	return t, true, nil
}

// CountPeriods returns the number of stored periods.
func (r *SQLiteRepository) CountPeriods(ctx context.Context) (int64, error) {
	n, err := r.queries.CountPeriods(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count periods: %v", store.ErrStore, err)
	}
	return n, nil
}

// Ping checks database connectivity.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", store.ErrStore, err)
	}
	return nil
}
