package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetflow/internal/amqp"
	"budgetflow/internal/core"
	"budgetflow/internal/store"
	"budgetflow/internal/store/memory"
)

type failingMirror struct {
	fail map[string]bool
	*memory.Store
}

func (f *failingMirror) Save(ctx context.Context, key string, b, e core.Amounts, comment string) error {
	if f.fail[key] {
		return store.ErrStore
	}
	return f.Store.Save(ctx, key, b, e, comment)
}

// chanSource feeds queued messages to the handler, recording results.
type chanSource struct {
	msgs    chan *amqp.PeriodSavedMessage
	results chan error
}

func (c *chanSource) ConsumePeriodSaved(ctx context.Context, handler amqp.Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-c.msgs:
			c.results <- handler(ctx, m)
		}
	}
}

func seed(t *testing.T, s store.PeriodWriter, keys ...string) {
	t.Helper()
	for i, k := range keys {
		budgets := core.BudgetCategories.Zero()
		budgets[0].Value = int64(100 * (i + 1))
		require.NoError(t, s.Save(context.Background(), k, budgets, core.ExpenseCategories.Zero(), "seed"))
	}
}

func TestHandlePeriodSaved(t *testing.T) {
	primary, mirror := memory.New(), memory.New()
	seed(t, primary, "2025_March")
	w := NewMirrorWorker(primary, mirror, nil, 0)
	ctx := context.Background()

	require.NoError(t, w.HandlePeriodSaved(ctx, &amqp.PeriodSavedMessage{Key: "2025_March"}))
	got, found, err := mirror.Get(ctx, "2025_March")
	require.NoError(t, err)
	require.True(t, found)
	want, _, _ := primary.Get(ctx, "2025_March")
	assert.Equal(t, want.Budgets, got.Budgets)
	assert.Equal(t, "seed", got.Comment)

	// unknown keys are acknowledged without mirroring
	require.NoError(t, w.HandlePeriodSaved(ctx, &amqp.PeriodSavedMessage{Key: "1999_May"}))
	assert.Equal(t, 1, mirror.Len())
}

func TestHandlePeriodSavedMirrorFailure(t *testing.T) {
	primary := memory.New()
	seed(t, primary, "2025_March")
	mirror := &failingMirror{fail: map[string]bool{"2025_March": true}, Store: memory.New()}
	w := NewMirrorWorker(primary, mirror, nil, 0)

	err := w.HandlePeriodSaved(context.Background(), &amqp.PeriodSavedMessage{Key: "2025_March"})
	assert.ErrorIs(t, err, store.ErrStore)
}

func TestResync(t *testing.T) {
	primary := memory.New()
	seed(t, primary, "2025_January", "2025_February", "2025_March")
	mirror := &failingMirror{fail: map[string]bool{"2025_February": true}, Store: memory.New()}
	w := NewMirrorWorker(primary, mirror, nil, 0)

	n, err := w.Resync(context.Background())
	assert.Equal(t, 2, n)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrStore)
	assert.Contains(t, err.Error(), "2025_February")
	assert.Equal(t, 2, mirror.Len())
}

func TestRunConsumesUntilCancelled(t *testing.T) {
	primary, mirror := memory.New(), memory.New()
	seed(t, primary, "2025_January")
	src := &chanSource{msgs: make(chan *amqp.PeriodSavedMessage, 1), results: make(chan error, 1)}
	w := NewMirrorWorker(primary, mirror, src, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// startup resync already mirrored January; February arrives by message
	seed(t, primary, "2025_February")
	src.msgs <- &amqp.PeriodSavedMessage{Key: "2025_February"}
	select {
	case err := <-src.results:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("message was not handled")
	}
	assert.Equal(t, 2, mirror.Len())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRunReturnsConsumerError(t *testing.T) {
	w := NewMirrorWorker(memory.New(), memory.New(), errSource{errors.New("queue deleted")}, 0)
	err := w.Run(context.Background())
	assert.EqualError(t, err, "queue deleted")
}

type errSource struct{ err error }

func (e errSource) ConsumePeriodSaved(context.Context, amqp.Handler) error { return e.err }
