// Package memory is an in-process PeriodStore.
package memory

import (
	"context"
	"sync"
	"time"

	"budgetflow/internal/core"
	"budgetflow/internal/store"
)

var (
	_ store.PeriodStore   = (*Store)(nil)
	_ store.PeriodStamper = (*Store)(nil)
)

type Store struct {
	mu      sync.RWMutex
	records map[string]core.PeriodRecord
	now     func() time.Time
}

func New() *Store {
	return &Store{records: make(map[string]core.PeriodRecord), now: time.Now}
}

// Save replaces any record stored under key.
func (s *Store) Save(_ context.Context, key string, budgets, expenses core.Amounts, comment string) error {
	rec := core.PeriodRecord{
		Key:       key,
		Budgets:   budgets.Clone(),
		Expenses:  expenses.Clone(),
		Comment:   comment,
		UpdatedAt: s.now().UTC(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = rec
	return nil
}

// ListKeys returns all keys; the slice is never nil.
func (s *Store) ListKeys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	return keys, nil
}

// Get returns a copy of the record so callers cannot mutate stored state.
func (s *Store) Get(_ context.Context, key string) (core.PeriodRecord, bool, error) {
	s.mu.RLock()
	rec, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return core.PeriodRecord{}, false, nil
	}
	rec.Budgets = rec.Budgets.Clone()
	rec.Expenses = rec.Expenses.Clone()
	return rec, true, nil
}

// UpdatedAt implements store.PeriodStamper.
func (s *Store) UpdatedAt(_ context.Context, key string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	return rec.UpdatedAt, ok, nil
}

// Len returns the number of stored periods.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
