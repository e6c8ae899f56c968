// Package encryption seals catalog snapshots before they are sent to a vault.
package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"

	"mediavault/internal/catalog"
	"mediavault/internal/config"
)

// ErrNotConfigured is returned when the key files have not been generated.
var ErrNotConfigured = errors.New("encryption keys not configured")

// AgeSealer seals snapshots to an X25519 recipient. The public key is kept in
// plaintext; the identity is itself age-encrypted under a scrypt passphrase.
type AgeSealer struct {
	publicKeyPath  string
	privateKeyPath string
}

var _ catalog.Sealer = (*AgeSealer)(nil)

func NewAgeSealer(cfg config.EncryptionConfig) *AgeSealer {
	return &AgeSealer{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
	}
}

// Setup generates a fresh key pair. Existing keys are not overwritten.
func (s *AgeSealer) Setup(passphrase string) error {
	if s.IsConfigured() {
		return fmt.Errorf("keys already exist at %s", s.privateKeyPath)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}

	for _, dir := range []string{filepath.Dir(s.publicKeyPath), filepath.Dir(s.privateKeyPath)} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating key directory: %w", err)
		}
	}

	if err := os.WriteFile(s.publicKeyPath, []byte(identity.Recipient().String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}
	return s.writeIdentity(identity, passphrase)
}

// ChangePassphrase re-wraps the identity under a new passphrase. The key pair
// itself is unchanged, so existing snapshots stay readable.
func (s *AgeSealer) ChangePassphrase(oldPassphrase, newPassphrase string) error {
	identity, err := s.readIdentity(oldPassphrase)
	if err != nil {
		return err
	}
	return s.writeIdentity(identity, newPassphrase)
}

func (s *AgeSealer) Seal(r io.Reader, w io.Writer) error {
	recipient, err := s.recipient()
	if err != nil {
		return err
	}

	sealed, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.Copy(sealed, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}
	if err := sealed.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return nil
}

func (s *AgeSealer) Unlock(passphrase string) (catalog.Opener, error) {
	identity, err := s.readIdentity(passphrase)
	if err != nil {
		return nil, err
	}
	return &ageOpener{identity: identity}, nil
}

func (s *AgeSealer) IsConfigured() bool {
	for _, path := range []string{s.publicKeyPath, s.privateKeyPath} {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

func (s *AgeSealer) recipient() (age.Recipient, error) {
	data, err := os.ReadFile(s.publicKeyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("reading public key: %w", err)
	}

	recipients, err := age.ParseRecipients(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients in %s", s.publicKeyPath)
	}
	return recipients[0], nil
}

// writeIdentity replaces the private key file atomically.
func (s *AgeSealer) writeIdentity(identity *age.X25519Identity, passphrase string) error {
	wrap, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, wrap)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.WriteString(w, identity.String()+"\n"); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing private key: %w", err)
	}

	tmp := s.privateKeyPath + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	if err := os.Rename(tmp, s.privateKeyPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing private key: %w", err)
	}
	return nil
}

func (s *AgeSealer) readIdentity(passphrase string) (*age.X25519Identity, error) {
	data, err := os.ReadFile(s.privateKeyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("reading private key: %w", err)
	}

	unwrap, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	plain, err := age.Decrypt(bytes.NewReader(data), unwrap)
	if err != nil {
		return nil, fmt.Errorf("decrypting private key: %w", err)
	}
	keyData, err := io.ReadAll(plain)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}

	identity, err := age.ParseX25519Identity(string(bytes.TrimSpace(keyData)))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return identity, nil
}

type ageOpener struct {
	identity age.Identity
}

func (o *ageOpener) Open(r io.Reader, w io.Writer) error {
	plain, err := age.Decrypt(r, o.identity)
	if err != nil {
		return fmt.Errorf("creating decrypted reader: %w", err)
	}
	if _, err := io.Copy(w, plain); err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}
	return nil
}
