package backend

import (
	"context"
	"fmt"
	"log/slog"

	"econguide/internal/content/google"
	"econguide/internal/content/memory"
	"econguide/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// createSQLiteBackend opens the database and seeds it with the embedded
// curriculum the first time.
func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	topics, err := memory.DefaultTopics()
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("load embedded catalog: %w", err)
	}
	seeded, err := repo.SeedCatalog(ctx, topics)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"schema_version", repo.SchemaVersion(),
		"seeded_topics", seeded)

	return &BackendResult{Catalog: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, config.Google)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.Google.SpreadsheetID)

	return &BackendResult{Catalog: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	store, err := memory.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded catalog: %w", err)
	}

	f.logger.Info("Initialized memory backend")

	return &BackendResult{Catalog: store}, nil
}
