package main

import (
	"context"
	"os"
	"time"

	"budgetflow/internal/backend"
	"budgetflow/internal/cli"
	applog "budgetflow/internal/log"
	"budgetflow/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg).WithComponent(applog.ComponentMirror)

	logger.Info("Starting budgetflow-worker")

	// The worker runs in its own process, so it can only mirror a store
	// that is shared on disk.
	if cfg.DataBackend != backend.SQLiteBackend.String() {
		logger.Error("Mirror worker requires the sqlite backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	ctx := context.Background()
	factory := backend.NewFactory(logger.Logger)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	primary, err := factory.CreateStore(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to open primary store", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer primary.Close()

	mirror, err := factory.CreateMirror(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets mirror", applog.FieldError, err)
		os.Exit(1)
	}
	if mirror == nil {
		logger.Error("Nothing to mirror to: GOOGLE_SPREADSHEET_ID is not set")
		os.Exit(1)
	}
	logger.Info("Google Sheets mirror initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	var messages worker.MessageSource
	amqpClient, err := factory.ConnectAMQP(cfg)
	switch {
	case err != nil:
		logger.Warn("Broker unavailable, relying on periodic resync", applog.FieldError, err)
	case amqpClient == nil:
		logger.Info("AMQP disabled, relying on periodic resync", "interval", cfg.MirrorInterval)
	default:
		defer amqpClient.Close()
		messages = amqpClient
	}

	w := worker.NewMirrorWorker(primary.Store, mirror, messages, cfg.MirrorInterval)

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	if err := w.Run(runCtx); err != nil {
		logger.Error("Mirror worker stopped", applog.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(runCtx, done)
	logger.Info("Worker shutdown complete")
}
