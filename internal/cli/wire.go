package cli

import (
	"context"
	"errors"
	"fmt"

	"budgetflow/internal/amqp"
	"budgetflow/internal/backend"
	"budgetflow/internal/cache"
	"budgetflow/internal/config"
	applog "budgetflow/internal/log"
	"budgetflow/internal/services"
	"budgetflow/internal/store"
)

// App bundles the wired dependencies a process needs.
type App struct {
	Config *config.Config
	Store  *backend.Result
	AMQP   *amqp.Client
	// Views is nil when the store cannot report update stamps.
	Views   *cache.LRUCache[services.PeriodView]
	Service *services.PeriodService
}

// Close releases the AMQP connection and the store.
func (a *App) Close() error {
	var errs []error
	if a.AMQP != nil {
		if err := a.AMQP.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	return errors.Join(errs...)
}

// BuildApp creates the store, the optional AMQP publisher and the period
// service. An unreachable broker is logged and publishing is disabled.
func BuildApp(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*App, error) {
	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := factory.CreateStore(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Store: res}

	// Cached views are revalidated against update stamps; a store without
	// them could be changed by another process behind the cache.
	var views cache.Cache[services.PeriodView]
	if _, ok := store.StamperOf(res.Store); ok {
		app.Views = cache.NewLRUCache[services.PeriodView](cfg.CacheSize, cfg.CacheTTL)
		views = app.Views
	} else {
		logger.WithComponent(applog.ComponentCache).Info("View cache disabled, store has no update stamps",
			"backend", cfg.DataBackend)
	}

	var publisher services.PeriodPublisher
	client, err := factory.ConnectAMQP(cfg)
	if err != nil {
		logger.WithComponent(applog.ComponentAMQP).Warn("Continuing without period events", applog.FieldError, err)
	} else if client != nil {
		app.AMQP = client
		publisher = client
	}

	app.Service = services.NewPeriodService(res.Store, publisher, views)
	return app, nil
}
