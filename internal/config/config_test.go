package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		HostID:  "test-host-abc",
		BaseDir: "/home/user/.local/share/mv",
		LogDir:  "/home/user/.local/share/mv/log",
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: "/home/user/.local/share/mv/db",
		},
		Filesystem: FilesystemConfig{Ignore: []string{"*.nfo", "Thumbs.db"}},
		Vaults: []VaultConfig{
			{Type: "filesystem", Name: "local", FSVaultRoot: "/backup/vault"},
			{Type: "s3", Name: "offsite", S3Bucket: "media", S3Region: "eu-west-1", S3Prefix: "mv"},
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/home/user/.local/share/mv/keys/mv.pub",
			PrivateKeyPath: "/home/user/.local/share/mv/keys/mv.key",
		},
		Search: SearchConfig{Enabled: true},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.HostID != original.HostID {
		t.Errorf("HostID = %q, want %q", got.HostID, original.HostID)
	}
	if got.Database.DataDir != original.Database.DataDir {
		t.Errorf("Database.DataDir = %q, want %q", got.Database.DataDir, original.Database.DataDir)
	}
	if len(got.Vaults) != 2 {
		t.Fatalf("len(Vaults) = %d, want 2", len(got.Vaults))
	}
	if got.Vaults[1].S3Bucket != "media" {
		t.Errorf("Vaults[1].S3Bucket = %q, want %q", got.Vaults[1].S3Bucket, "media")
	}
	if got.Encryption.PrivateKeyPath != original.Encryption.PrivateKeyPath {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", got.Encryption.PrivateKeyPath, original.Encryption.PrivateKeyPath)
	}
	if !got.Search.Enabled {
		t.Error("Search.Enabled = false, want true")
	}
	if len(got.Filesystem.Ignore) != 2 {
		t.Errorf("len(Filesystem.Ignore) = %d, want 2", len(got.Filesystem.Ignore))
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("host-1", "/data/mv")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"LogDir", cfg.LogDir, "/data/mv/log"},
		{"Database.Type", cfg.Database.Type, "sqlite"},
		{"Database.DataDir", cfg.Database.DataDir, "/data/mv/db"},
		{"Vaults[0].FSVaultRoot", cfg.Vaults[0].FSVaultRoot, "/data/mv/vault"},
		{"Encryption.PublicKeyPath", cfg.Encryption.PublicKeyPath, "/data/mv/keys/mv.pub"},
		{"Encryption.PrivateKeyPath", cfg.Encryption.PrivateKeyPath, "/data/mv/keys/mv.key"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(NewConfig()) error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing host id",
			mutate:  func(c *Config) { c.HostID = "" },
			wantErr: "HostID",
		},
		{
			name:    "unknown database type",
			mutate:  func(c *Config) { c.Database.Type = "postgres" },
			wantErr: "Type",
		},
		{
			name:    "sqlite without data dir",
			mutate:  func(c *Config) { c.Database.DataDir = "" },
			wantErr: "DataDir",
		},
		{
			name:   "memory database without data dir",
			mutate: func(c *Config) { c.Database = DatabaseConfig{Type: "memory"} },
		},
		{
			name: "s3 vault without bucket",
			mutate: func(c *Config) {
				c.Vaults = []VaultConfig{{Type: "s3", Name: "remote", S3Region: "us-east-1"}}
			},
			wantErr: "S3Bucket",
		},
		{
			name: "s3 vault with bad endpoint",
			mutate: func(c *Config) {
				c.Vaults = []VaultConfig{{Type: "s3", Name: "remote", S3Bucket: "b", S3Region: "us-east-1", S3Endpoint: "not a url"}}
			},
			wantErr: "S3Endpoint",
		},
		{
			name:    "unknown encryption type",
			mutate:  func(c *Config) { c.Encryption.Type = "rot13" },
			wantErr: "Type",
		},
		{
			name:   "empty encryption type",
			mutate: func(c *Config) { c.Encryption.Type = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("h1", "/data/mv")
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mv.toml")

		if err := Init(path, NewConfig("h1", dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mv.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mv.toml")
		cfg := NewConfig("", dir)

		if err := Init(path, cfg); err == nil {
			t.Fatal("Init() expected error for missing host id")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("config file should not exist, stat error = %v", err)
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mv.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HostID != "read-test" {
			t.Errorf("HostID = %q, want %q", got.HostID, "read-test")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/mv.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})

	t.Run("returns error for invalid content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mv.toml")
		if err := os.WriteFile(path, []byte("host_id = \"x\"\n[database]\ntype = \"oracle\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadFromFile(path); err == nil {
			t.Fatal("ReadFromFile() expected validation error")
		}
	})
}
