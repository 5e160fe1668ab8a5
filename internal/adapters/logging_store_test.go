package adapters

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"budgetflow/internal/core"
	"budgetflow/internal/store"
	"budgetflow/internal/store/memory"
)

type brokenStore struct{ store.PeriodStore }

func (brokenStore) ListKeys(context.Context) ([]string, error) {
	return nil, errors.Join(store.ErrStore, errors.New("disk gone"))
}

func TestLoggingStorePassesThrough(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	inner := memory.New()
	s := NewLoggingStore(inner, logger, "memory")
	ctx := context.Background()

	if err := s.Save(ctx, "2025_March", core.BudgetCategories.Zero(), nil, "x"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	rec, found, err := s.Get(ctx, "2025_March")
	if err != nil || !found || rec.Comment != "x" {
		t.Fatalf("Get = %+v %v %v", rec, found, err)
	}
	keys, err := s.ListKeys(ctx)
	if err != nil || len(keys) != 1 {
		t.Fatalf("ListKeys = %v %v", keys, err)
	}
	if s.Unwrap() != inner {
		t.Fatal("Unwrap should return the inner store")
	}

	out := buf.String()
	for _, want := range []string{"operation=save", "operation=read", "operation=list", "backend=memory", "period=2025_March"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLoggingStoreLogsErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := NewLoggingStore(brokenStore{}, logger, "sqlite")

	_, err := s.ListKeys(context.Background())
	if !errors.Is(err, store.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
	if !strings.Contains(buf.String(), "level=ERROR") || !strings.Contains(buf.String(), "disk gone") {
		t.Fatalf("expected error log, got %s", buf.String())
	}
}

func TestStamperFoundThroughLoggingStore(t *testing.T) {
	s := NewLoggingStore(memory.New(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), "memory")
	if _, ok := store.StamperOf(s); !ok {
		t.Fatal("expected the memory stamper behind the logging store")
	}
	if _, ok := store.StamperOf(NewLoggingStore(brokenStore{}, nil, "sqlite")); ok {
		t.Fatal("brokenStore has no stamper")
	}
}
