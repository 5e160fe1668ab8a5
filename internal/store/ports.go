// Package store declares the persistence ports for period records.
package store

import (
	"context"
	"errors"
	"time"

	"budgetflow/internal/core"
)

// ErrStore marks backend failures (unreachable database, rejected write).
// Implementations wrap it so callers can test with errors.Is.
var ErrStore = errors.New("period store")

type (
	// PeriodWriter upserts a whole period record. A later save for the same
	// key replaces the earlier one; a failed save persists nothing.
	PeriodWriter interface {
		Save(ctx context.Context, key string, budgets, expenses core.Amounts, comment string) error
	}

	// PeriodLister returns every stored period key in no particular order.
	PeriodLister interface {
		ListKeys(ctx context.Context) ([]string, error)
	}

	// PeriodReader fetches one period. A missing key is reported with
	// found=false and a nil error.
	PeriodReader interface {
		Get(ctx context.Context, key string) (rec core.PeriodRecord, found bool, err error)
	}

	// PeriodStore is the full contract the service layer depends on.
	PeriodStore interface {
		PeriodWriter
		PeriodLister
		PeriodReader
	}

	// PeriodStamper reports when a period was last saved without loading
	// its amounts. Stores shared between processes implement it so cached
	// views can be checked against writes made elsewhere.
	PeriodStamper interface {
		UpdatedAt(ctx context.Context, key string) (t time.Time, found bool, err error)
	}
)

// StamperOf returns the first store in the Unwrap chain of s that
// implements PeriodStamper.
func StamperOf(s PeriodStore) (PeriodStamper, bool) {
	for s != nil {
		if st, ok := s.(PeriodStamper); ok {
			return st, true
		}
		u, ok := s.(interface{ Unwrap() PeriodStore })
		if !ok {
			return nil, false
		}
		s = u.Unwrap()
	}
	return nil, false
}
