package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetflow/internal/amqp"
	applog "budgetflow/internal/log"
	"budgetflow/internal/store"
)

// MessageSource delivers period.saved messages to a handler until ctx ends.
type MessageSource interface {
	ConsumePeriodSaved(ctx context.Context, handler amqp.Handler) error
}

// MirrorSource is what the worker reads periods from.
type MirrorSource interface {
	store.PeriodReader
	store.PeriodLister
}

// MirrorWorker copies periods from the primary store into a mirror, either
// one at a time as saves are announced or all at once on resync.
type MirrorWorker struct {
	source   MirrorSource
	mirror   store.PeriodWriter
	messages MessageSource
	interval time.Duration
	logger   *applog.Logger
}

// NewMirrorWorker builds a worker. messages may be nil, in which case only
// periodic resyncs run. A non-positive interval disables the ticker.
func NewMirrorWorker(source MirrorSource, mirror store.PeriodWriter, messages MessageSource, interval time.Duration) *MirrorWorker {
	return &MirrorWorker{
		source:   source,
		mirror:   mirror,
		messages: messages,
		interval: interval,
		logger:   applog.FromContext(context.Background()).WithComponent(applog.ComponentMirror),
	}
}

// HandlePeriodSaved mirrors the announced period. A period that is no longer
// stored is skipped; store and mirror failures are returned so the message
// is redelivered.
func (w *MirrorWorker) HandlePeriodSaved(ctx context.Context, msg *amqp.PeriodSavedMessage) error {
	return w.mirrorKey(ctx, msg.Key)
}

func (w *MirrorWorker) mirrorKey(ctx context.Context, key string) error {
	rec, found, err := w.source.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load period %s: %w", key, err)
	}
	if !found {
		w.logger.WarnContext(ctx, "Period announced but not stored, skipping", applog.FieldPeriod, key)
		return nil
	}
	if err := w.mirror.Save(ctx, rec.Key, rec.Budgets, rec.Expenses, rec.Comment); err != nil {
		return fmt.Errorf("mirror period %s: %w", key, err)
	}
	w.logger.InfoContext(ctx, "Period mirrored", applog.FieldPeriod, key, applog.FieldOperation, applog.OpMirror)
	return nil
}

// Resync mirrors every stored period and returns how many succeeded.
// Individual failures do not stop the pass; they are joined into the error.
func (w *MirrorWorker) Resync(ctx context.Context) (int, error) {
	keys, err := w.source.ListKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("list periods: %w", err)
	}

	var errs []error
	mirrored := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return mirrored, err
		}
		if err := w.mirrorKey(ctx, key); err != nil {
			errs = append(errs, err)
			continue
		}
		mirrored++
	}

	w.logger.InfoContext(ctx, "Resync completed",
		applog.FieldOperation, applog.OpResync,
		"total", len(keys),
		"mirrored", mirrored,
		"errors", len(errs))
	return mirrored, errors.Join(errs...)
}

// Run performs a startup resync, then consumes messages and resyncs on
// every tick until ctx is cancelled.
func (w *MirrorWorker) Run(ctx context.Context) error {
	if _, err := w.Resync(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup resync failed", applog.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if w.messages != nil {
		g.Go(func() error {
			return w.messages.ConsumePeriodSaved(ctx, w.HandlePeriodSaved)
		})
	}

	if w.interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(w.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					if _, err := w.Resync(ctx); err != nil && ctx.Err() == nil {
						slog.ErrorContext(ctx, "Periodic resync failed", applog.FieldError, err)
					}
				}
			}
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
