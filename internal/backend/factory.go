package backend

import (
	"context"
	"fmt"

	applog "khata/internal/log"
	"khata/internal/ledger/google"
	"khata/internal/ledger/memory"
	"khata/internal/ledger/postgres"
	"khata/internal/ledger/sqlite"
	"khata/internal/ledger/xlsx"
)

// DefaultFactory builds ledger stores from a backend Config.
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a backend factory.
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.Config{})
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// CreateBackend implements Factory.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case XLSXBackend:
		store, err := xlsx.New(config.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize workbook backend: %w", err)
		}
		f.logger.Info("Initialized workbook backend", applog.FieldPath, config.DataDir)
		return &Result{Backend: store}, nil

	case SQLiteBackend:
		store, err := sqlite.New(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		f.logger.Info("Initialized sqlite backend", applog.FieldPath, config.SQLiteDBPath)
		return &Result{Backend: store, Cleanup: store.Close}, nil

	case PostgresBackend:
		store, err := postgres.New(config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres backend: %w", err)
		}
		f.logger.Info("Initialized postgres backend")
		return &Result{Backend: store, Cleanup: store.Close}, nil

	case SheetsBackend:
		store, err := google.NewFromEnv(ctx, config.GoogleRegistryFile)
		if err != nil {
			return nil, fmt.Errorf("initialize sheets backend: %w", err)
		}
		f.logger.Info("Initialized Google Sheets backend", applog.FieldPath, config.GoogleRegistryFile)
		return &Result{Backend: store}, nil

	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return &Result{Backend: memory.New()}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
