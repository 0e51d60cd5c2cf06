package backend

import (
	"context"

	"khata/internal/ledger"
)

// Backend is the full ledger store contract a factory product satisfies.
type Backend = ledger.Store

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result carries the backend instance and an optional cleanup function.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds what backend creation needs, independent of the app config.
type Config struct {
	Type Type

	// xlsx specific
	DataDir string

	// sqlite specific
	SQLiteDBPath string

	// postgres specific
	PostgresDSN string

	// sheets specific
	GoogleRegistryFile string
}

// Type selects a backend implementation.
type Type string

const (
	XLSXBackend     Type = "xlsx"
	SQLiteBackend   Type = "sqlite"
	PostgresBackend Type = "postgres"
	SheetsBackend   Type = "sheets"
	MemoryBackend   Type = "memory"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid reports whether the backend type is one we can build.
func (t Type) IsValid() bool {
	switch t {
	case XLSXBackend, SQLiteBackend, PostgresBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
