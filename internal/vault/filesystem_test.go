package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediavault/internal/catalog"
)

func TestFileSystemVault(t *testing.T) {
	runVaultContract(t, func(t *testing.T) catalog.Vault {
		v, err := NewFileSystemVault("test-vault", t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		return v
	})
}

func TestFileSystemVault_Layout(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("test-vault", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	if err := v.PutSnapshot("host-1", "catalog.db", strings.NewReader("data"), 4, 42); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "snapshots", "host-1", "catalog.db"))
	if err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}
	if string(data) != "data" {
		t.Errorf("snapshot file = %q, want %q", data, "data")
	}

	version, err := os.ReadFile(filepath.Join(root, "snapshots", "host-1", "catalog.db.version"))
	if err != nil {
		t.Fatalf("version file missing: %v", err)
	}
	if string(version) != "42" {
		t.Errorf("version file = %q, want %q", version, "42")
	}
}

func TestFileSystemVault_FailedPutLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("test-vault", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	if err := v.PutSnapshot("h", "db", strings.NewReader("short"), 100, 1); err == nil {
		t.Fatal("PutSnapshot() expected size mismatch error")
	}

	entries, err := os.ReadDir(filepath.Join(root, "snapshots", "h"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("host directory has %d entries after failed put, want 0", len(entries))
	}
}

func TestFileSystemVault_ValidateSetupMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "vault")
	v, err := NewFileSystemVault("test-vault", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}

	if err := v.ValidateSetup(); err == nil {
		t.Error("ValidateSetup() expected error after root removed")
	}
}
