package vault

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"mediavault/internal/catalog"
)

// runVaultContract exercises the behaviour every catalog.Vault shares.
func runVaultContract(t *testing.T, newVault func(t *testing.T) catalog.Vault) {
	t.Run("put and get snapshot", func(t *testing.T) {
		v := newVault(t)
		content := strings.Repeat("snapshot-bytes", 100)

		if err := v.PutSnapshot("host-1", "catalog.db.age", strings.NewReader(content), int64(len(content)), 7); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}

		var buf bytes.Buffer
		if err := v.GetSnapshot("host-1", "catalog.db.age", &buf); err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if buf.String() != content {
			t.Errorf("GetSnapshot() returned %d bytes, want %d", buf.Len(), len(content))
		}

		version, err := v.SnapshotVersion("host-1", "catalog.db.age")
		if err != nil {
			t.Fatalf("SnapshotVersion() error = %v", err)
		}
		if version != 7 {
			t.Errorf("SnapshotVersion() = %d, want 7", version)
		}
	})

	t.Run("overwrite replaces data and version", func(t *testing.T) {
		v := newVault(t)
		if err := v.PutSnapshot("h", "db", strings.NewReader("old"), 3, 1); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
		if err := v.PutSnapshot("h", "db", strings.NewReader("newer"), 5, 2); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}

		var buf bytes.Buffer
		if err := v.GetSnapshot("h", "db", &buf); err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if buf.String() != "newer" {
			t.Errorf("GetSnapshot() = %q, want %q", buf.String(), "newer")
		}
		if version, _ := v.SnapshotVersion("h", "db"); version != 2 {
			t.Errorf("SnapshotVersion() = %d, want 2", version)
		}
	})

	t.Run("missing snapshot", func(t *testing.T) {
		v := newVault(t)

		var buf bytes.Buffer
		err := v.GetSnapshot("nobody", "db", &buf)
		if !errors.Is(err, catalog.ErrSnapshotNotFound) {
			t.Errorf("GetSnapshot() error = %v, want ErrSnapshotNotFound", err)
		}

		version, err := v.SnapshotVersion("nobody", "db")
		if err != nil {
			t.Fatalf("SnapshotVersion() error = %v", err)
		}
		if version != 0 {
			t.Errorf("SnapshotVersion() = %d, want 0", version)
		}
	})

	t.Run("hosts are isolated", func(t *testing.T) {
		v := newVault(t)
		if err := v.PutSnapshot("host-a", "db", strings.NewReader("a"), 1, 3); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}

		var buf bytes.Buffer
		if err := v.GetSnapshot("host-b", "db", &buf); !errors.Is(err, catalog.ErrSnapshotNotFound) {
			t.Errorf("GetSnapshot(host-b) error = %v, want ErrSnapshotNotFound", err)
		}
	})

	t.Run("size mismatch", func(t *testing.T) {
		v := newVault(t)
		if err := v.PutSnapshot("h", "db", strings.NewReader("abc"), 10, 1); err == nil {
			t.Error("PutSnapshot() expected size mismatch error")
		}
	})

	t.Run("validate setup", func(t *testing.T) {
		v := newVault(t)
		if err := v.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})
}
