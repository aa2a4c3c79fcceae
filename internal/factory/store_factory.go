package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/adapters/store"
	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/core"
)

// StoreFactory creates result stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new result store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{cfg: cfg, logger: logger}
}

// CreateResultStore creates a result store based on the configuration.
// When persistence is disabled it returns nil and the triage service skips
// the save step.
func (f *StoreFactory) CreateResultStore() (core.ResultStore, error) {
	storeCfg, err := f.cfg.GetStore()
	if err != nil {
		return nil, err
	}
	if !storeCfg.Enabled {
		return nil, nil
	}

	switch storeCfg.Type {
	case "memory":
		return store.NewMemoryStore(f.logger, storeCfg.Retention, storeCfg.CleanupFrequency), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(storeCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(storeCfg.SQLitePath, f.logger, storeCfg.Retention, storeCfg.CleanupFrequency)
	case "mysql":
		return store.NewMySQLStore(storeCfg.MySQLDSN, f.logger, storeCfg.Retention, storeCfg.CleanupFrequency)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeCfg.Type)
	}
}
