package fs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOSFilesystemManager_Resolve(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp3"), "x")
	m := NewOSFilesystemManager(nil)

	t.Run("regular file", func(t *testing.T) {
		p, err := m.Resolve(filepath.Join(root, "a.mp3"))
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.IsDir() || p.String() != filepath.Join(root, "a.mp3") {
			t.Errorf("Resolve() = %s dir=%v", p, p.IsDir())
		}
	})

	t.Run("directory", func(t *testing.T) {
		p, err := m.Resolve(root)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !p.IsDir() {
			t.Error("IsDir() = false, want true")
		}
	})

	t.Run("symlink rejected", func(t *testing.T) {
		link := filepath.Join(root, "link")
		if err := os.Symlink(filepath.Join(root, "a.mp3"), link); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
		if _, err := m.Resolve(link); err == nil {
			t.Error("Resolve() expected error for symlink")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := m.Resolve(filepath.Join(root, "nope")); err == nil {
			t.Error("Resolve() expected error for missing path")
		}
	})
}

func TestOSFilesystemManager_Listing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.mp3"), "x")
	writeFile(t, filepath.Join(root, "a.mp3"), "x")
	writeFile(t, filepath.Join(root, "sub", "c.mp3"), "x")
	m := NewOSFilesystemManager(nil)

	names, err := m.ListDirectory(root)
	if err != nil {
		t.Fatalf("ListDirectory() error = %v", err)
	}
	if want := []string{"a.mp3", "b.mp3", "sub"}; !reflect.DeepEqual(names, want) {
		t.Errorf("ListDirectory() = %v, want %v", names, want)
	}

	isDir, err := m.IsDirectory(filepath.Join(root, "sub"))
	if err != nil || !isDir {
		t.Errorf("IsDirectory(sub) = %v, %v, want true", isDir, err)
	}
	isDir, err = m.IsDirectory(filepath.Join(root, "a.mp3"))
	if err != nil || isDir {
		t.Errorf("IsDirectory(a.mp3) = %v, %v, want false", isDir, err)
	}

	if !m.Exists(filepath.Join(root, "b.mp3")) {
		t.Error("Exists(b.mp3) = false")
	}
	if m.Exists(filepath.Join(root, "gone.mp3")) {
		t.Error("Exists(gone.mp3) = true")
	}
}

func TestOSFilesystemManager_IsIgnored(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, IgnoreFileName), "*.nfo\nSamples/\n")
	writeFile(t, filepath.Join(root, "film.mkv"), "x")
	writeFile(t, filepath.Join(root, "film.nfo"), "x")
	writeFile(t, filepath.Join(root, "film.part"), "x")
	writeFile(t, filepath.Join(root, "Samples", "s.mkv"), "x")

	m := NewOSFilesystemManager([]string{"*.part"})

	tests := []struct {
		name string
		want bool
	}{
		{"film.mkv", false},
		{"film.nfo", true},
		{"film.part", true},
		{"Samples", true},
		{IgnoreFileName, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.IsIgnored(filepath.Join(root, tt.name), root)
			if err != nil {
				t.Fatalf("IsIgnored() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsIgnored(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
