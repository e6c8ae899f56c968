package testutil

import (
	"testing"

	"mediavault/internal/database"
)

// NewTestDatabase creates an in-memory SQLite catalog with migrations applied.
// The database is closed when the test completes.
func NewTestDatabase(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
