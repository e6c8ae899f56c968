package encryption

import (
	"bytes"
	"fmt"
	"io"

	"mediavault/internal/catalog"
)

// markerHeader is prepended by MarkerSealer so that sealed output differs
// from the input while staying deterministic.
var markerHeader = []byte("MVSEAL\x00\x01")

// MarkerSealer frames data with a fixed header instead of encrypting it.
// It is selected with encryption type "test".
type MarkerSealer struct {
	setupCalled bool
}

var _ catalog.Sealer = (*MarkerSealer)(nil)

func NewMarkerSealer() *MarkerSealer {
	return &MarkerSealer{}
}

func (s *MarkerSealer) Setup(string) error {
	s.setupCalled = true
	return nil
}

func (s *MarkerSealer) Seal(r io.Reader, w io.Writer) error {
	if _, err := w.Write(markerHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (s *MarkerSealer) Unlock(string) (catalog.Opener, error) {
	return markerOpener{}, nil
}

func (s *MarkerSealer) IsConfigured() bool { return true }

type markerOpener struct{}

func (markerOpener) Open(r io.Reader, w io.Writer) error {
	header := make([]byte, len(markerHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Equal(header, markerHeader) {
		return fmt.Errorf("not a sealed snapshot")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

// PlainSealer passes snapshots through unchanged. It is selected with
// encryption type "none" for vaults that encrypt at rest themselves.
type PlainSealer struct{}

var _ catalog.Sealer = PlainSealer{}

func (PlainSealer) Setup(string) error { return nil }

func (PlainSealer) Seal(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (PlainSealer) Unlock(string) (catalog.Opener, error) { return plainOpener{}, nil }

func (PlainSealer) IsConfigured() bool { return true }

type plainOpener struct{}

func (plainOpener) Open(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
