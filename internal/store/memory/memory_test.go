package memory

import (
	"context"
	"testing"
	"time"

	"budgetflow/internal/core"
	"budgetflow/internal/store"
	"budgetflow/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.PeriodStore { return New() })
}

func TestSaveStampsUpdatedAt(t *testing.T) {
	s := New()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if err := s.Save(context.Background(), "2025_March", core.BudgetCategories.Zero(), nil, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec, found, err := s.Get(context.Background(), "2025_March")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if !rec.UpdatedAt.Equal(fixed) {
		t.Fatalf("unexpected UpdatedAt: %v", rec.UpdatedAt)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", s.Len())
	}
}

func TestSaveCopiesInput(t *testing.T) {
	s := New()
	budgets := core.Amounts{{Category: "Brand Marketing", Value: 10}}
	if err := s.Save(context.Background(), "2025_March", budgets, nil, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	budgets[0].Value = 500

	rec, _, _ := s.Get(context.Background(), "2025_March")
	if rec.Budgets[0].Value != 10 {
		t.Fatalf("stored record changed with caller slice: %v", rec.Budgets)
	}
}

func TestEmptyAmountsStayEmpty(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.Save(ctx, "2025_March", core.Amounts{}, nil, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec, _, _ := s.Get(ctx, "2025_March")
	if rec.Budgets == nil || len(rec.Budgets) != 0 {
		t.Fatalf("budgets = %#v, want empty non-nil", rec.Budgets)
	}
	if rec.Expenses != nil {
		t.Fatalf("expenses = %#v, want nil", rec.Expenses)
	}
}

func TestUpdatedAtMatchesStamp(t *testing.T) {
	s := New()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	if _, found, _ := s.UpdatedAt(ctx, "2025_March"); found {
		t.Fatal("unexpected stamp before save")
	}
	if err := s.Save(ctx, "2025_March", nil, nil, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, found, err := s.UpdatedAt(ctx, "2025_March")
	if err != nil || !found || !got.Equal(fixed) {
		t.Fatalf("UpdatedAt = %v %v %v, want %v", got, found, err, fixed)
	}
}
