package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediavault/internal/catalog"
	"mediavault/internal/config"
	"mediavault/internal/database"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.NewConfig("test-host", base)
	cfg.Encryption = config.EncryptionConfig{Type: "test"}
	return cfg
}

func openApp(t *testing.T, cfg *config.Config, operation string) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, operation, Options{})
	if err != nil {
		t.Fatalf("New(%s) error = %v", operation, err)
	}
	return a
}

func closeApp(t *testing.T, a *App) {
	t.Helper()
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func writeMediaTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "pictures")
	for _, name := range []string{"2023/beach.png", "2023/notes.txt", "cat.png"} {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		content := pngHeader
		if strings.HasSuffix(name, ".txt") {
			content = []byte("just some text\n")
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestApp_IngestAndBrowse(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t)
	root := writeMediaTree(t)

	a := openApp(t, cfg, OpCreateUser)
	if _, err := a.CreateUser(ctx, "alice", "pw", false); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if _, err := a.CreateUser(ctx, "bob", "pw", false); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	closeApp(t, a)

	a = openApp(t, cfg, OpAddItems)
	n, err := a.AddItems(ctx, root, "alice", "self", "")
	if err != nil {
		t.Fatalf("AddItems() error = %v", err)
	}
	// pictures, 2023, beach.png, cat.png
	if n != 4 {
		t.Errorf("AddItems() = %d, want 4", n)
	}
	closeApp(t, a)

	a = openApp(t, cfg, "Browse")
	defer closeApp(t, a)

	roots, err := a.List(ctx, "alice", "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(roots) != 1 || roots[0].Path != root {
		t.Fatalf("List(alice) roots = %d, want %s", len(roots), root)
	}

	children, err := a.List(ctx, "alice", root)
	if err != nil {
		t.Fatalf("List(root) error = %v", err)
	}
	if len(children) != 2 {
		t.Errorf("List(root) = %d items, want 2", len(children))
	}

	if bobRoots, _ := a.List(ctx, "bob", ""); len(bobRoots) != 0 {
		t.Errorf("bob sees %d roots, want 0", len(bobRoots))
	}

	found, err := a.Search(ctx, "alice", "beach", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(found) != 1 || filepath.Base(found[0].Path) != "beach.png" {
		t.Errorf("Search(beach) = %d results", len(found))
	}

	if _, err := a.List(ctx, "", ""); err == nil {
		t.Error("List() without a user should fail")
	}
}

func TestApp_JournalAndSnapshot(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t)

	a := openApp(t, cfg, OpCreateUser)
	if _, err := a.CreateUser(ctx, "alice", "pw", true); err != nil {
		t.Fatal(err)
	}
	closeApp(t, a)

	a = openApp(t, cfg, "Status")
	status, err := a.SnapshotStatus(ctx)
	if err != nil {
		t.Fatalf("SnapshotStatus() error = %v", err)
	}
	if status.LocalVersion != 1 || status.RemoteVersion != 1 {
		t.Errorf("SnapshotStatus() = %+v, want 1/1", status)
	}

	ops, err := a.History(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 || ops[0].Operation != OpCreateUser || ops[0].Status != "success" {
		t.Errorf("History() = %+v", ops)
	}
	closeApp(t, a)

	t.Run("read-only commands do not journal", func(t *testing.T) {
		a := openApp(t, cfg, "Status")
		ops, _ := a.History(ctx, 0)
		closeApp(t, a)
		if len(ops) != 1 {
			t.Errorf("History() = %d entries, want 1", len(ops))
		}
	})

	t.Run("failed mutation is journaled as error", func(t *testing.T) {
		a := openApp(t, cfg, OpCreateUser)
		if _, err := a.CreateUser(ctx, "alice", "pw", false); !errors.Is(err, catalog.ErrUserExists) {
			t.Errorf("CreateUser(duplicate) error = %v", err)
		}
		closeApp(t, a)

		a = openApp(t, cfg, "Status")
		defer closeApp(t, a)
		ops, _ := a.History(ctx, 1)
		if len(ops) != 1 || ops[0].Status != "error" {
			t.Errorf("latest operation = %+v, want status error", ops)
		}
	})

	t.Run("stale catalog is refused and can be restored", func(t *testing.T) {
		stale := *cfg
		stale.Database.DataDir = filepath.Join(t.TempDir(), "fresh-db")

		if _, err := New(ctx, &stale, "Status", Options{}); err == nil {
			t.Fatal("New() on a catalog behind the vault should fail")
		}

		a, err := New(ctx, &stale, OpRestore, Options{})
		if err != nil {
			t.Fatalf("New(restore) error = %v", err)
		}
		dest := filepath.Join(t.TempDir(), "restored.db")
		version, err := a.RestoreSnapshot(ctx, dest, "")
		closeApp(t, a)
		if err != nil {
			t.Fatalf("RestoreSnapshot() error = %v", err)
		}
		if version < 2 {
			t.Errorf("restored version = %d, want at least 2", version)
		}

		restored, err := database.NewSQLiteDatabase(dest)
		if err != nil {
			t.Fatalf("opening restored snapshot: %v", err)
		}
		defer restored.Close()
		u, err := restored.FindUserByUsername(ctx, "alice")
		if err != nil || u == nil {
			t.Errorf("restored snapshot has no alice: %v", err)
		}
	})
}

func TestApp_SnapshotSkippedWithoutKeys(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t)
	cfg.Encryption = config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(cfg.BaseDir, "keys", "mv.pub"),
		PrivateKeyPath: filepath.Join(cfg.BaseDir, "keys", "mv.key"),
	}

	a := openApp(t, cfg, OpSnapshot)
	if a.KeysConfigured() {
		t.Fatal("keys should not be configured yet")
	}
	if _, err := a.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	closeApp(t, a)

	a = openApp(t, cfg, "Status")
	status, _ := a.SnapshotStatus(ctx)
	if status.RemoteVersion != 0 {
		t.Errorf("RemoteVersion = %d, want 0 without keys", status.RemoteVersion)
	}
	if err := a.SetupKeys("pass"); err != nil {
		t.Fatalf("SetupKeys() error = %v", err)
	}
	closeApp(t, a)

	a = openApp(t, cfg, OpSnapshot)
	id, err := a.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	closeApp(t, a)

	a = openApp(t, cfg, "Status")
	defer closeApp(t, a)
	status, _ = a.SnapshotStatus(ctx)
	if status.RemoteVersion != id {
		t.Errorf("RemoteVersion = %d, want %d", status.RemoteVersion, id)
	}
}
