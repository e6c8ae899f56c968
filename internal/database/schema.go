package database

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// DumpSchema returns the CREATE statements of the migrated schema, tables
// first, excluding SQLite internals and the migration bookkeeping table.
func (s *SQLiteDatabase) DumpSchema(ctx context.Context) (string, error) {
	var statements []string
	err := s.db.SelectContext(ctx, &statements, `
		SELECT sql || ';'
		FROM sqlite_master
		WHERE type IN ('table', 'index')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY
		  CASE type WHEN 'table' THEN 1 WHEN 'index' THEN 2 END,
		  name`)
	if err != nil {
		return "", fmt.Errorf("reading schema: %w", err)
	}
	return strings.Join(statements, "\n\n") + "\n", nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}
