package backend

import (
	"context"

	"econguide/internal/content"
	"econguide/internal/content/google"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the catalog instance and optional cleanup function
type BackendResult struct {
	Catalog content.Catalog
	Cleanup CleanupFunc
}

// Factory creates catalog backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	Google google.Options
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
