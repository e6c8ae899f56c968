package testutil

import (
	"mediavault/internal/encryption"
	"mediavault/internal/vault"
)

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() *vault.MemoryVault {
	return vault.NewMemoryVault("test-vault")
}

// NewTestSealer returns a sealer that frames data without real encryption.
func NewTestSealer() *encryption.MarkerSealer {
	return encryption.NewMarkerSealer()
}
