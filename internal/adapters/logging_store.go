// Package adapters wraps period stores with cross-cutting behaviour.
package adapters

import (
	"context"
	"log/slog"
	"time"

	"budgetflow/internal/core"
	applog "budgetflow/internal/log"
	"budgetflow/internal/store"
)

// LoggingStore logs every store operation with its duration and outcome.
type LoggingStore struct {
	next    store.PeriodStore
	logger  *slog.Logger
	backend string
}

var _ store.PeriodStore = (*LoggingStore)(nil)

func NewLoggingStore(next store.PeriodStore, logger *slog.Logger, backend string) *LoggingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingStore{
		next:    next,
		logger:  logger.With(applog.FieldComponent, applog.ComponentStorage, "backend", backend),
		backend: backend,
	}
}

// Unwrap returns the decorated store.
func (s *LoggingStore) Unwrap() store.PeriodStore { return s.next }

func (s *LoggingStore) Save(ctx context.Context, key string, budgets, expenses core.Amounts, comment string) error {
	start := time.Now()
	err := s.next.Save(ctx, key, budgets, expenses, comment)
	s.log(ctx, applog.OpSave, start, err, applog.FieldPeriod, key)
	return err
}

func (s *LoggingStore) ListKeys(ctx context.Context) ([]string, error) {
	start := time.Now()
	keys, err := s.next.ListKeys(ctx)
	s.log(ctx, applog.OpList, start, err, "count", len(keys))
	return keys, err
}

func (s *LoggingStore) Get(ctx context.Context, key string) (core.PeriodRecord, bool, error) {
	start := time.Now()
	rec, found, err := s.next.Get(ctx, key)
	s.log(ctx, applog.OpRead, start, err, applog.FieldPeriod, key, "found", found)
	return rec, found, err
}

func (s *LoggingStore) log(ctx context.Context, op string, start time.Time, err error, args ...any) {
	args = append(args,
		applog.FieldOperation, op,
		applog.FieldDuration, time.Since(start).Milliseconds())
	if err != nil {
		s.logger.ErrorContext(ctx, "Store operation failed", append(args, applog.FieldError, err)...)
		return
	}
	s.logger.DebugContext(ctx, "Store operation", args...)
}
