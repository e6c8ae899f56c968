package database

import (
	"fmt"
	"path/filepath"

	"mediavault/internal/config"
)

// NewDatabaseFromConfig opens the catalog store described by cfg.
// A sqlite store lives at <data_dir>/<host_id>.db.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, hostID string) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := ensureDir(cfg.DataDir); err != nil {
			return nil, err
		}
		return NewSQLiteDatabase(filepath.Join(cfg.DataDir, hostID+".db"))
	case "memory":
		return NewSQLiteDatabase(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
