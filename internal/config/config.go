// Package config reads and writes the mv TOML configuration file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config is the top-level mv configuration.
type Config struct {
	HostID     string           `toml:"host_id" validate:"required"`
	BaseDir    string           `toml:"base_dir" validate:"required"`
	LogDir     string           `toml:"log_dir" validate:"required"`
	Database   DatabaseConfig   `toml:"database"`
	Filesystem FilesystemConfig `toml:"filesystem"`
	Vaults     []VaultConfig    `toml:"vaults" validate:"dive"`
	Encryption EncryptionConfig `toml:"encryption"`
	Search     SearchConfig     `toml:"search"`
}

// DatabaseConfig selects the catalog store.
// Type determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type" validate:"oneof=sqlite memory"`
	DataDir string `toml:"data_dir,omitempty" validate:"required_if=Type sqlite"`
}

// FilesystemConfig holds ingestion settings.
type FilesystemConfig struct {
	// Ignore holds gitignore-style patterns skipped during ingestion, in
	// addition to any .mvignore file at the root of the ingested tree.
	Ignore []string `toml:"ignore"`
}

// VaultConfig describes where catalog snapshots are stored.
// This is a tagged union: Type decides which other fields are read.
type VaultConfig struct {
	Type string `toml:"type" validate:"oneof=memory filesystem s3"`
	Name string `toml:"name" validate:"required"`

	// Used when Type == "s3".
	S3Bucket   string `toml:"s3_bucket,omitempty" validate:"required_if=Type s3"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty" validate:"required_if=Type s3"`
	S3Endpoint string `toml:"s3_endpoint,omitempty" validate:"omitempty,url"`

	// Used when Type == "filesystem".
	FSVaultRoot string `toml:"fs_vault_root,omitempty" validate:"required_if=Type filesystem"`
}

// EncryptionConfig holds the age key pair used to seal snapshots.
type EncryptionConfig struct {
	Type           string `toml:"type" validate:"omitempty,oneof=age test none"` // "age" when empty
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// SearchConfig toggles the in-memory full-text index.
type SearchConfig struct {
	Enabled bool `toml:"enabled"`
}

// NewConfig creates a Config rooted at baseDir with the default layout:
// sqlite database, filesystem vault, age keys and search enabled.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID:  hostID,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Filesystem: FilesystemConfig{
			Ignore: []string{".*", "*.part", "*.tmp"},
		},
		Vaults: []VaultConfig{
			{Type: "filesystem", Name: "local", FSVaultRoot: filepath.Join(baseDir, "vault")},
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "mv.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "mv.key"),
		},
		Search: SearchConfig{Enabled: true},
	}
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes and validates a Config from r.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write encodes a Config to w.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := Validate(cfg); err != nil {
		return err
	}
	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
