package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"mediavault/internal/catalog"
	"mediavault/internal/database/migrations"
)

// inChunk bounds the number of ids bound into one IN (...) clause.
const inChunk = 500

// SQLiteDatabase implements catalog.Database on SQLite.
//
// The connection pool is pinned to a single connection: SQLite allows one
// writer, and an in-memory database only exists on the connection that
// created it. Code holding a transaction must therefore never query through
// s.db until the transaction is finished.
type SQLiteDatabase struct {
	db   *sqlx.DB
	path string
}

// NewSQLiteDatabase opens the database at path, or ":memory:", and migrates
// it to the latest schema.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing connection.
// The caller is responsible for configuring and migrating it.
func NewSQLiteDatabaseFromDB(db *sqlx.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db}
}

// connectionParams are applied by the driver to every connection it opens.
// Cascading deletes depend on foreign keys, which SQLite leaves off unless asked.
const connectionParams = "_foreign_keys=on&_busy_timeout=5000"

// dsn appends connectionParams to path.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + connectionParams
}

// OpenConnection opens and configures a SQLite connection.
func OpenConnection(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the schema is up to date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db.DB)
}

// MigrationStatus reports the current and latest schema versions.
func (s *SQLiteDatabase) MigrationStatus() (migrations.Status, error) {
	return migrations.ReadStatus(s.db.DB)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// withTx runs fn in a transaction, committing only if fn succeeds.
func (s *SQLiteDatabase) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// get runs a single-row query, mapping sql.ErrNoRows to found=false.
func get(ctx context.Context, q sqlx.QueryerContext, dest any, query string, args ...any) (bool, error) {
	if err := sqlx.GetContext(ctx, q, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// chunks splits ids into slices of at most inChunk elements.
func chunks(ids []int64) [][]int64 {
	var out [][]int64
	for len(ids) > inChunk {
		out = append(out, ids[:inChunk])
		ids = ids[inChunk:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

func now() time.Time {
	return time.Now().UTC()
}

var _ catalog.Database = (*SQLiteDatabase)(nil)
