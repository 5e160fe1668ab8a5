package backend

import (
	"context"

	"budgetflow/internal/store"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result is a ready store plus its optional cleanup.
type Result struct {
	Store   store.PeriodStore
	Cleanup CleanupFunc
}

// Close runs Cleanup if there is one.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates period stores based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// BackendType selects the primary store implementation.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
