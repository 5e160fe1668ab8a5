package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"budgetflow/internal/cache"
	"budgetflow/internal/chart"
	"budgetflow/internal/core"
	applog "budgetflow/internal/log"
	"budgetflow/internal/store"
)

// PeriodPublisher announces saved periods to downstream consumers.
type PeriodPublisher interface {
	PublishPeriodSaved(ctx context.Context, key string) error
}

// ValidationError reports caller input that was rejected before reaching
// the store.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PeriodView is everything the presentation layer renders for one period.
type PeriodView struct {
	Record  core.PeriodRecord `json:"record"`
	Summary core.Summary      `json:"summary"`
	Flow    chart.Flow        `json:"flow"`
	Bar     chart.BarChart    `json:"bar"`
}

// PeriodService orchestrates saving and viewing periods across the store,
// the view cache and the event publisher.
//
// The view cache is per process. Cached views are only served while the
// store's update stamp still matches, when the store reports one (see
// store.PeriodStamper), so saves made by other processes are picked up.
type PeriodService struct {
	store     store.PeriodStore
	stamper   store.PeriodStamper
	publisher PeriodPublisher
	views     cache.Cache[PeriodView]
	events    *applog.StructuredLogger

	// mu guards gens, a per-key save counter. A view loaded before a save
	// finished is never put in the cache.
	mu   sync.Mutex
	gens map[string]uint64
}

// NewPeriodService wires a service. publisher and views may be nil.
func NewPeriodService(st store.PeriodStore, publisher PeriodPublisher, views cache.Cache[PeriodView]) *PeriodService {
	stamper, _ := store.StamperOf(st)
	return &PeriodService{
		store:     st,
		stamper:   stamper,
		publisher: publisher,
		views:     views,
		events:    applog.NewStructuredLogger(applog.FromContext(context.Background())),
		gens:      make(map[string]uint64),
	}
}

// Save validates and upserts the period for year/month. Amounts are
// completed against the category enumerations before storing.
func (s *PeriodService) Save(ctx context.Context, year, month int, budgets, expenses core.Amounts, comment string) (string, error) {
	key, err := core.NewPeriodKey(year, month)
	if err != nil {
		return "", &ValidationError{Field: "period", Err: err}
	}
	if err := s.SaveKey(ctx, key, budgets, expenses, comment); err != nil {
		return "", err
	}
	return key, nil
}

// SaveKey is Save for callers that already hold a period key.
func (s *PeriodService) SaveKey(ctx context.Context, key string, budgets, expenses core.Amounts, comment string) error {
	if _, _, err := core.ParsePeriodKey(key); err != nil {
		return &ValidationError{Field: "period", Err: err}
	}
	if err := budgets.Validate(core.BudgetCategories); err != nil {
		return &ValidationError{Field: "budgets", Err: err}
	}
	if err := expenses.Validate(core.ExpenseCategories); err != nil {
		return &ValidationError{Field: "expenses", Err: err}
	}
	rec := core.PeriodRecord{
		Key:      key,
		Budgets:  budgets.Complete(core.BudgetCategories),
		Expenses: expenses.Complete(core.ExpenseCategories),
		Comment:  strings.TrimSpace(comment),
	}
	if err := rec.Validate(); err != nil {
		return &ValidationError{Field: recordField(err), Err: err}
	}

	if err := s.store.Save(ctx, rec.Key, rec.Budgets, rec.Expenses, rec.Comment); err != nil {
		return fmt.Errorf("save period %s: %w", key, err)
	}
	s.invalidate(key)

	sum := core.Summarize(rec)
	s.events.LogPeriodSaved(ctx, key, sum.TotalBudget, sum.TotalExpense)

	if s.publisher != nil {
		if err := s.publisher.PublishPeriodSaved(ctx, key); err != nil {
			// The period is stored; the mirror catches up on its next resync.
			slog.WarnContext(ctx, "Failed to publish period saved message",
				applog.FieldPeriod, key, applog.FieldError, err)
		}
	}
	return nil
}

// Periods returns the stored keys in chronological order.
func (s *PeriodService) Periods(ctx context.Context) ([]string, error) {
	keys, err := s.store.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	SortPeriodKeys(keys)
	return keys, nil
}

// View loads a period and derives its summary and chart data. The boolean
// is false when the key is not stored.
func (s *PeriodService) View(ctx context.Context, key string) (PeriodView, bool, error) {
	if s.views != nil {
		if v, ok := s.views.Get(key); ok {
			if s.current(ctx, v) {
				return v, true, nil
			}
			s.views.Delete(key)
		}
	}

	gen := s.generation(key)
	rec, found, err := s.store.Get(ctx, key)
	if err != nil {
		return PeriodView{}, false, fmt.Errorf("load period %s: %w", key, err)
	}
	if !found {
		return PeriodView{}, false, nil
	}

	view := NewPeriodView(rec)
	s.remember(key, gen, view)
	return view, true, nil
}

// current reports whether a cached view still matches the stored record.
// Without a stamper the cache is trusted until the next local save.
func (s *PeriodService) current(ctx context.Context, v PeriodView) bool {
	if s.stamper == nil {
		return true
	}
	stamp, found, err := s.stamper.UpdatedAt(ctx, v.Record.Key)
	if err != nil {
		slog.DebugContext(ctx, "Update stamp unavailable, reloading period",
			applog.FieldPeriod, v.Record.Key, applog.FieldError, err)
		return false
	}
	return found && stamp.Equal(v.Record.UpdatedAt)
}

func (s *PeriodService) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[key]
}

// remember caches view unless key was saved since gen was read.
func (s *PeriodService) remember(key string, gen uint64, view PeriodView) {
	if s.views == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[key] == gen {
		s.views.Set(key, view)
	}
}

func (s *PeriodService) invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[key]++
	if s.views != nil {
		s.views.Delete(key)
	}
}

// recordField names the part of a record that failed Validate.
func recordField(err error) string {
	switch {
	case errors.Is(err, core.ErrCommentTooLong):
		return "comment"
	case errors.Is(err, core.ErrInvalidPeriodKey):
		return "period"
	default:
		return "record"
	}
}

// NewPeriodView derives the summary and both charts from a record.
func NewPeriodView(rec core.PeriodRecord) PeriodView {
	return PeriodView{
		Record:  rec,
		Summary: core.Summarize(rec),
		Flow:    chart.BuildFlow(rec.Budgets, rec.Expenses),
		Bar:     chart.BuildBar(rec.Budgets),
	}
}

// Ping checks that the store answers.
func (s *PeriodService) Ping(ctx context.Context) error {
	_, err := s.store.ListKeys(ctx)
	return err
}

// SortPeriodKeys orders keys by year then month. Keys that do not parse
// go last, in lexical order.
func SortPeriodKeys(keys []string) {
	slices.SortStableFunc(keys, func(a, b string) int {
		ya, ma, ea := core.ParsePeriodKey(a)
		yb, mb, eb := core.ParsePeriodKey(b)
		switch {
		case ea != nil && eb != nil:
			return strings.Compare(a, b)
		case ea != nil:
			return 1
		case eb != nil:
			return -1
		case ya != yb:
			return ya - yb
		default:
			return ma - mb
		}
	})
}
