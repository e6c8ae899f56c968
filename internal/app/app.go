// Package app wires the catalog service to its configured store, vault,
// sealer and search index, and exposes the operations the CLI runs.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mediavault/internal/catalog"
	"mediavault/internal/config"
	"mediavault/internal/database"
	"mediavault/internal/encryption"
	"mediavault/internal/fs"
	"mediavault/internal/mime"
	"mediavault/internal/search"
	"mediavault/internal/vault"
)

// snapshotName is the vault name of the catalog snapshot.
const snapshotName = "catalog"

// App is the layer between the CLI and catalog.Service. It builds every
// dependency from config, accepts raw paths and user names, and on Close
// journals the operation and ships a snapshot when the catalog changed.
type App struct {
	cfg     *config.Config
	db      *database.SQLiteDatabase
	vault   catalog.Vault
	sealer  catalog.Sealer
	fsmgr   catalog.FilesystemManager
	index   *search.Index
	service *catalog.Service
	op      *Operation
	logger  *slog.Logger
	logFile *os.File
}

// Options adjusts how an App is built.
type Options struct {
	// Verbose enables debug log records.
	Verbose bool
	// Parameters are recorded with the operation in the journal.
	Parameters map[string]string
}

// New creates a fully wired App. operation names the CLI command being run
// (one of the Op constants). The caller must call Close when done.
func New(ctx context.Context, cfg *config.Config, operation string, opts Options) (*App, error) {
	if len(cfg.Vaults) == 0 {
		return nil, fmt.Errorf("no vaults configured")
	}
	v, err := vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}

	sealer, err := encryption.NewSealerFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating sealer: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.HostID)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	// A restore is how a stale catalog catches up, so it skips the check.
	if operation != OpRestore {
		if err := checkSnapshotVersion(ctx, db, v, cfg.HostID); err != nil {
			db.Close()
			return nil, err
		}
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID, opts.Verbose)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore)
	svc := catalog.NewService(db, fsmgr, mime.NewClassifier(), &slogAdapter{l: logger}, catalog.RealClock{}, catalog.UUIDGenerator{})

	a := &App{
		cfg:     cfg,
		db:      db,
		vault:   v,
		sealer:  sealer,
		fsmgr:   fsmgr,
		service: svc,
		op:      NewOperation(operation, opts.Parameters),
		logger:  logger,
		logFile: logFile,
	}

	if cfg.Search.Enabled {
		if err := a.attachSearchIndex(ctx); err != nil {
			a.closeResources()
			logFile.Close()
			return nil, err
		}
	}
	return a, nil
}

// checkSnapshotVersion refuses to run on a catalog older than the one in the vault.
func checkSnapshotVersion(ctx context.Context, db catalog.Database, v catalog.Vault, hostID string) error {
	remote, err := v.SnapshotVersion(hostID, snapshotName)
	if err != nil {
		return fmt.Errorf("checking remote snapshot version: %w", err)
	}
	local, err := db.MaxOperationID(ctx)
	if err != nil {
		return fmt.Errorf("checking local catalog version: %w", err)
	}
	if remote > local {
		return fmt.Errorf("local catalog is behind the vault snapshot (local=%d, remote=%d): restore the snapshot or re-initialize", local, remote)
	}
	return nil
}

func (a *App) attachSearchIndex(ctx context.Context) error {
	index, err := search.New()
	if err != nil {
		return fmt.Errorf("creating search index: %w", err)
	}
	a.index = index
	a.service.SetSearchIndex(index)
	if _, err := a.service.ReindexAll(ctx); err != nil {
		return fmt.Errorf("building search index: %w", err)
	}
	return nil
}

// Service exposes the underlying catalog service.
func (a *App) Service() *catalog.Service {
	return a.service
}

// persistOperation gives the operation a journal id. Only mutating commands call it.
func (a *App) persistOperation(ctx context.Context) error {
	if a.op.Persisted() {
		return nil
	}
	dbOp, err := a.db.CreateOperation(ctx, a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// Close finalizes the operation and releases resources. For a persisted
// operation it finishes the journal row, snapshots the database and uploads
// the sealed snapshot with the operation id as its version.
func (a *App) Close() error {
	ctx := context.Background()
	var errs []error

	var snapshotPath string
	if a.op.Persisted() {
		if err := a.db.FinishOperation(ctx, a.op.ID, a.op.Status); err != nil {
			errs = append(errs, fmt.Errorf("finishing operation: %w", err))
		}

		path, err := a.backupDatabase()
		if err != nil {
			errs = append(errs, err)
		}
		snapshotPath = path
	}

	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	if snapshotPath != "" {
		if err := a.uploadSnapshot(snapshotPath, a.op.ID); err != nil {
			errs = append(errs, err)
		}
		os.Remove(snapshotPath)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}
	return errors.Join(errs...)
}

func (a *App) closeResources() error {
	if a.index != nil {
		a.index.Close()
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// backupDatabase writes a consistent copy of the catalog to a temp file.
func (a *App) backupDatabase() (string, error) {
	tmp, err := os.CreateTemp("", "mv-catalog-*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp file for snapshot: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	// VACUUM INTO refuses to overwrite an existing file.
	os.Remove(path)

	if err := a.db.BackupTo(path); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
