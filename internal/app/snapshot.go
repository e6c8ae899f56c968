package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mediavault/internal/catalog"
	"mediavault/internal/encryption"
)

// SnapshotStatus compares the local journal with the vault.
type SnapshotStatus struct {
	LocalVersion  int64
	RemoteVersion int64
}

// Snapshot journals an explicit snapshot request. The snapshot itself is
// taken and uploaded by Close, versioned with the returned id.
func (a *App) Snapshot(ctx context.Context) (int64, error) {
	if err := a.persistOperation(ctx); err != nil {
		return 0, err
	}
	return a.op.ID, nil
}

func (a *App) SnapshotStatus(ctx context.Context) (*SnapshotStatus, error) {
	local, err := a.db.MaxOperationID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading local version: %w", err)
	}
	remote, err := a.vault.SnapshotVersion(a.cfg.HostID, snapshotName)
	if err != nil {
		return nil, fmt.Errorf("reading remote version: %w", err)
	}
	return &SnapshotStatus{LocalVersion: local, RemoteVersion: remote}, nil
}

// uploadSnapshot seals the database copy at path and stores it in the vault.
// Without keys there is nothing to seal with, so the upload is skipped.
func (a *App) uploadSnapshot(path string, version int64) error {
	if !a.sealer.IsConfigured() {
		a.logger.Warn("snapshot not uploaded", "reason", "encryption keys not configured", "version", version)
		return nil
	}

	sealedPath := path + ".sealed"
	if err := a.sealFile(path, sealedPath); err != nil {
		return err
	}
	defer os.Remove(sealedPath)

	f, err := os.Open(sealedPath)
	if err != nil {
		return fmt.Errorf("opening sealed snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat sealed snapshot: %w", err)
	}

	if err := a.vault.PutSnapshot(a.cfg.HostID, snapshotName, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading snapshot: %w", err)
	}
	a.logger.Info("snapshot uploaded", "version", version, "bytes", info.Size())
	return nil
}

func (a *App) sealFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating sealed snapshot: %w", err)
	}
	if err := a.sealer.Seal(in, out); err != nil {
		out.Close()
		return fmt.Errorf("sealing snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing sealed snapshot: %w", err)
	}
	return nil
}

// RestoreSnapshot fetches the vault snapshot for this host, opens it with
// the passphrase and writes the database to dest. dest must not exist.
func (a *App) RestoreSnapshot(ctx context.Context, dest, passphrase string) (int64, error) {
	if _, err := os.Stat(dest); err == nil {
		return 0, fmt.Errorf("refusing to overwrite %s", dest)
	}

	version, err := a.vault.SnapshotVersion(a.cfg.HostID, snapshotName)
	if err != nil {
		return 0, fmt.Errorf("reading snapshot version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("host %s: %w", a.cfg.HostID, catalog.ErrSnapshotNotFound)
	}

	opener, err := a.sealer.Unlock(passphrase)
	if err != nil {
		return 0, fmt.Errorf("unlocking keys: %w", err)
	}

	sealed, err := os.CreateTemp("", "mv-restore-*.sealed")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(sealed.Name())
	defer sealed.Close()

	if err := a.vault.GetSnapshot(a.cfg.HostID, snapshotName, sealed); err != nil {
		return 0, fmt.Errorf("downloading snapshot: %w", err)
	}
	if _, err := sealed.Seek(0, 0); err != nil {
		return 0, fmt.Errorf("rewinding snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("creating destination directory: %w", err)
	}
	tmpDest := dest + ".partial"
	out, err := os.OpenFile(tmpDest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, fmt.Errorf("creating destination: %w", err)
	}
	if err := opener.Open(sealed, out); err != nil {
		out.Close()
		os.Remove(tmpDest)
		return 0, fmt.Errorf("opening snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpDest)
		return 0, fmt.Errorf("closing destination: %w", err)
	}
	if err := os.Rename(tmpDest, dest); err != nil {
		os.Remove(tmpDest)
		return 0, fmt.Errorf("moving restored snapshot into place: %w", err)
	}

	a.logger.Info("snapshot restored", "version", version, "dest", dest)
	return version, nil
}

// SetupKeys generates the snapshot key pair.
func (a *App) SetupKeys(passphrase string) error {
	if err := a.sealer.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up keys: %w", err)
	}
	return nil
}

// ChangePassphrase re-wraps the private key. Only age keys have a passphrase.
func (a *App) ChangePassphrase(oldPassphrase, newPassphrase string) error {
	age, ok := a.sealer.(*encryption.AgeSealer)
	if !ok {
		return fmt.Errorf("encryption type %q has no passphrase", a.cfg.Encryption.Type)
	}
	return age.ChangePassphrase(oldPassphrase, newPassphrase)
}

// KeysConfigured reports whether snapshots will be sealed and uploaded.
func (a *App) KeysConfigured() bool {
	return a.sealer.IsConfigured()
}
