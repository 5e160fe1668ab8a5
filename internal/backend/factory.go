package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budgetflow/internal/adapters"
	"budgetflow/internal/amqp"
	"budgetflow/internal/config"
	gsheet "budgetflow/internal/sheets/google"
	"budgetflow/internal/storage"
	"budgetflow/internal/store/memory"
)

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateStore builds the configured store, wrapped with operation logging.
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteStore(config)
	case SheetsBackend:
		res, err = f.createSheetsStore(ctx, config)
	case MemoryBackend:
		res, err = f.createMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}
	res.Store = adapters.NewLoggingStore(res.Store, f.logger, config.Type.String())
	return res, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &Result{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsStore(ctx context.Context, config Config) (*Result, error) {
	cli, err := gsheet.New(ctx, config.Sheets)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend", "sheet", config.Sheets.SheetName)
	return &Result{Store: cli}, nil
}

func (f *DefaultFactory) createMemoryStore() (*Result, error) {
	f.logger.Warn("Using in-memory backend, periods are lost on restart")
	return &Result{Store: memory.New()}, nil
}

// CreateMirror returns the Google Sheets mirror, or nil when no spreadsheet
// is configured.
func (f *DefaultFactory) CreateMirror(ctx context.Context, appConfig *config.Config) (*gsheet.Client, error) {
	if !appConfig.SheetsEnabled() {
		return nil, nil
	}
	cli, err := gsheet.New(ctx, SheetsOptions(appConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets mirror: %w", err)
	}
	return cli, nil
}

// ConnectAMQP dials the broker, or returns nil when none is configured.
// A dial failure is returned so the caller decides whether it is fatal.
func (f *DefaultFactory) ConnectAMQP(appConfig *config.Config) (*amqp.Client, error) {
	if !appConfig.AMQPEnabled() {
		return nil, nil
	}
	client, err := amqp.NewClient(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", appConfig.AMQPExchange,
		"queue", appConfig.AMQPQueue)
	return client, nil
}
