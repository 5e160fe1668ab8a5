package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"budgetflow/internal/cache"
	"budgetflow/internal/cli"
	apphttp "budgetflow/internal/http"
	applog "budgetflow/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)

	app, err := cli.BuildApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", applog.FieldError, err,
			applog.FieldOperation, applog.OpStartup, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, app.Service, apphttp.Options{
		Currency:           cfg.Currency,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		Logger:             logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := app.Close(); err != nil {
			logger.Error("Failed to release resources", applog.FieldError, err)
		}
	})

	if app.Views != nil {
		go cache.NewManager(app.Views).Run(ctx, 10*time.Minute)
	}

	logger.Info("Starting budgetflow server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp", app.AMQP != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
