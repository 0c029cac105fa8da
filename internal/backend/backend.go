package backend

import (
	"fmt"

	"triad/internal/config"
	"triad/internal/store"
)

// Backend is the unified persistence surface the dashboard runs on.
type Backend interface {
	store.DecisionWriter
	store.DecisionLister
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result bundles a backend with its cleanup function (nil when the
// backend holds no resources).
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Type selects the persistence backend.
type Type string

const (
	CSVBackend    Type = "csv"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case CSVBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds what the factory needs to build a backend.
type Config struct {
	Type         Type
	CSVPath      string
	SQLiteDBPath string
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	t := Type(appConfig.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return Config{
		Type:         t,
		CSVPath:      appConfig.CSVPath,
		SQLiteDBPath: appConfig.SQLiteDBPath,
	}, nil
}
