package catalog

import "io"

// Vault stores catalog snapshots away from the local database.
// Snapshots are addressed by host id and name and carry a version number,
// which is the operation journal id at the time the snapshot was taken.
type Vault interface {
	// PutSnapshot stores a snapshot. size is the number of bytes that will be read from r.
	PutSnapshot(hostID, name string, r io.Reader, size int64, version int64) error

	// GetSnapshot writes the stored snapshot to w.
	GetSnapshot(hostID, name string, w io.Writer) error

	// SnapshotVersion returns the stored version, or 0 if there is no snapshot.
	SnapshotVersion(hostID, name string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}

// Sealer encrypts snapshots before they leave the machine.
// Sealing needs only the public key; opening needs the passphrase-protected private key.
type Sealer interface {
	// Setup generates the key pair, protecting the private key with passphrase.
	Setup(passphrase string) error

	// Seal encrypts r into w.
	Seal(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key and returns an Opener for the session.
	Unlock(passphrase string) (Opener, error)

	// IsConfigured reports whether the key files exist.
	IsConfigured() bool
}

// Opener decrypts sealed snapshots. It holds the unlocked key in memory only.
type Opener interface {
	Open(r io.Reader, w io.Writer) error
}
