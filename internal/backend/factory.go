package backend

import (
	"fmt"
	"log/slog"

	"triad/internal/storage"
	"triad/internal/store/flatfile"
	"triad/internal/store/memory"
)

// New builds the configured backend. The csv backend is the default
// flat-file decision log; sqlite adds mirror bookkeeping; memory is for
// tests and throwaway runs.
func New(cfg Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case CSVBackend:
		if cfg.CSVPath == "" {
			return nil, fmt.Errorf("CSV path is required for csv backend")
		}
		st := flatfile.New(cfg.CSVPath)
		logger.Info("Initialized csv backend", "path", cfg.CSVPath)
		return &Result{Backend: st}, nil

	case SQLiteBackend:
		if cfg.SQLiteDBPath == "" {
			return nil, fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Backend: repo, Cleanup: repo.Close}, nil

	case MemoryBackend:
		logger.Info("Initialized memory backend")
		return &Result{Backend: memory.New()}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
