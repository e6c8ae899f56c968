package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mediavault/internal/catalog"
)

// FileSystemVault stores snapshots in a directory tree:
//
//	<root>/
//	  snapshots/
//	    <hostID>/
//	      <name>          (snapshot bytes)
//	      <name>.version  (journal id at snapshot time)
type FileSystemVault struct {
	name         string
	root         string
	snapshotsDir string
}

// NewFileSystemVault creates the vault layout under root if needed.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	snapshotsDir := filepath.Join(root, "snapshots")
	if err := os.MkdirAll(snapshotsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}
	return &FileSystemVault{
		name:         name,
		root:         root,
		snapshotsDir: snapshotsDir,
	}, nil
}

func (v *FileSystemVault) hostDir(hostID string) string {
	return filepath.Join(v.snapshotsDir, hostID)
}

// PutSnapshot writes the snapshot first and the version second, so a
// reader never sees a version without its data.
func (v *FileSystemVault) PutSnapshot(hostID, name string, r io.Reader, size int64, version int64) error {
	dir := v.hostDir(hostID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create host directory: %w", err)
	}

	if err := writeAtomic(filepath.Join(dir, name), r, size); err != nil {
		return err
	}

	data := strconv.FormatInt(version, 10)
	return writeAtomic(filepath.Join(dir, name+".version"), strings.NewReader(data), int64(len(data)))
}

func (v *FileSystemVault) GetSnapshot(hostID, name string, w io.Writer) error {
	f, err := os.Open(filepath.Join(v.hostDir(hostID), name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s for host %s: %w", name, hostID, catalog.ErrSnapshotNotFound)
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

// SnapshotVersion returns 0 if no version file exists.
func (v *FileSystemVault) SnapshotVersion(hostID, name string) (int64, error) {
	data, err := os.ReadFile(filepath.Join(v.hostDir(hostID), name+".version"))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ValidateSetup checks that the vault directories exist.
func (v *FileSystemVault) ValidateSetup() error {
	for _, dir := range []string{v.root, v.snapshotsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeAtomic copies r into destPath through a temp file and a rename.
func writeAtomic(destPath string, r io.Reader, expectedSize int64) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}

var _ catalog.Vault = (*FileSystemVault)(nil)
