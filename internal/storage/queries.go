package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const (
	kindBudget  = "budget"
	kindExpense = "expense"
)

type Period struct {
	PeriodKey string
	Comment   string
	UpdatedAt string
}

type PeriodAmount struct {
	Kind     string
	Position int64
	Category string
	Amount   int64
}

const upsertPeriod = `
INSERT INTO periods (period_key, comment, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(period_key) DO UPDATE SET
    comment = excluded.comment,
    updated_at = excluded.updated_at`

func (q *Queries) UpsertPeriod(ctx context.Context, arg Period) error {
	_, err := q.db.ExecContext(ctx, upsertPeriod, arg.PeriodKey, arg.Comment, arg.UpdatedAt)
	return err
}

const deletePeriodAmounts = `DELETE FROM period_amounts WHERE period_key = ?`

func (q *Queries) DeletePeriodAmounts(ctx context.Context, periodKey string) error {
	_, err := q.db.ExecContext(ctx, deletePeriodAmounts, periodKey)
	return err
}

const insertPeriodAmount = `
INSERT INTO period_amounts (period_key, kind, position, category, amount)
VALUES (?, ?, ?, ?, ?)`

func (q *Queries) InsertPeriodAmount(ctx context.Context, periodKey string, a PeriodAmount) error {
	_, err := q.db.ExecContext(ctx, insertPeriodAmount, periodKey, a.Kind, a.Position, a.Category, a.Amount)
	return err
}

const getPeriod = `SELECT period_key, comment, updated_at FROM periods WHERE period_key = ?`

func (q *Queries) GetPeriod(ctx context.Context, periodKey string) (Period, error) {
	var p Period
	err := q.db.QueryRowContext(ctx, getPeriod, periodKey).Scan(&p.PeriodKey, &p.Comment, &p.UpdatedAt)
	return p, err
}

const getPeriodUpdatedAt = `SELECT updated_at FROM periods WHERE period_key = ?`

func (q *Queries) GetPeriodUpdatedAt(ctx context.Context, periodKey string) (string, error) {
	var updatedAt string
	err := q.db.QueryRowContext(ctx, getPeriodUpdatedAt, periodKey).Scan(&updatedAt)
	return updatedAt, err
}

const getPeriodAmounts = `
SELECT kind, position, category, amount
FROM period_amounts
WHERE period_key = ?
ORDER BY kind, position`

func (q *Queries) GetPeriodAmounts(ctx context.Context, periodKey string) ([]PeriodAmount, error) {
	rows, err := q.db.QueryContext(ctx, getPeriodAmounts, periodKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []PeriodAmount
	for rows.Next() {
		var a PeriodAmount
		if err := rows.Scan(&a.Kind, &a.Position, &a.Category, &a.Amount); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const listPeriodKeys = `SELECT period_key FROM periods`

func (q *Queries) ListPeriodKeys(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listPeriodKeys)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

const countPeriods = `SELECT COUNT(*) FROM periods`

func (q *Queries) CountPeriods(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countPeriods).Scan(&n)
	return n, err
}
