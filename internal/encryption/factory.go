package encryption

import (
	"fmt"

	"mediavault/internal/catalog"
	"mediavault/internal/config"
)

// NewSealerFromConfig picks the Sealer named by cfg.Type.
func NewSealerFromConfig(cfg config.EncryptionConfig) (catalog.Sealer, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeSealer(cfg), nil
	case "test":
		return NewMarkerSealer(), nil
	case "none":
		return PlainSealer{}, nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
