// Package mime sniffs file contents and maps MIME types onto media kinds.
package mime

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"mediavault/internal/catalog"
)

// mediaTypes lists the accepted MIME types. Anything else is skipped at ingestion.
var mediaTypes = map[string]catalog.MediaKind{
	catalog.DirectoryMimeType: catalog.KindDirectory,

	"video/3gpp":       catalog.KindVideo,
	"video/3gpp2":      catalog.KindVideo,
	"video/x-flv":      catalog.KindVideo,
	"video/h264":       catalog.KindVideo,
	"video/jpeg":       catalog.KindVideo,
	"video/x-m4v":      catalog.KindVideo,
	"video/x-ms-wmv":   catalog.KindVideo,
	"video/mpeg":       catalog.KindVideo,
	"video/mp4":        catalog.KindVideo,
	"video/ogg":        catalog.KindVideo,
	"video/webm":       catalog.KindVideo,
	"video/x-matroska": catalog.KindVideo,
	"video/quicktime":  catalog.KindVideo,
	"video/x-msvideo":  catalog.KindVideo,
	"video/mp2t":       catalog.KindVideo,

	"audio/x-aac":     catalog.KindAudio,
	"audio/aac":       catalog.KindAudio,
	"audio/x-mpegurl": catalog.KindAudio,
	"audio/x-ms-wma":  catalog.KindAudio,
	"audio/mpeg":      catalog.KindAudio,
	"audio/mp4":       catalog.KindAudio,
	"audio/x-m4a":     catalog.KindAudio,
	"audio/ogg":       catalog.KindAudio,
	"audio/webm":      catalog.KindAudio,
	"audio/x-wav":     catalog.KindAudio,
	"audio/wav":       catalog.KindAudio,
	"audio/flac":      catalog.KindAudio,
	"audio/x-flac":    catalog.KindAudio,
	"audio/opus":      catalog.KindAudio,

	"image/gif":   catalog.KindImage,
	"image/jpeg":  catalog.KindImage,
	"image/png":   catalog.KindImage,
	"image/x-png": catalog.KindImage,
	"image/x-rgb": catalog.KindImage,
	"image/tiff":  catalog.KindImage,
	"image/webp":  catalog.KindImage,
	"image/bmp":   catalog.KindImage,
}

// mediaTypeNames holds the keys of mediaTypes in lexical order.
var mediaTypeNames = func() []string {
	names := make([]string, 0, len(mediaTypes))
	for name := range mediaTypes {
		if name != catalog.DirectoryMimeType {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}()

// Classifier implements catalog.MimeClassifier with content sniffing.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify sniffs the file at path. The result carries no parameters.
func (c *Classifier) Classify(path string) (string, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detecting type of %s: %w", path, err)
	}

	detected := normalize(m.String())
	if _, ok := mediaTypes[detected]; ok {
		return detected, nil
	}
	// The detector may know a table entry only as an alias.
	for _, name := range mediaTypeNames {
		if m.Is(name) {
			return name, nil
		}
	}
	return detected, nil
}

func (c *Classifier) IsMedia(mimeType string) bool {
	_, ok := mediaTypes[normalize(mimeType)]
	return ok
}

// MediaType returns the kind for mimeType, or KindUnknown if it is not media.
func (c *Classifier) MediaType(mimeType string) catalog.MediaKind {
	if kind, ok := mediaTypes[normalize(mimeType)]; ok {
		return kind
	}
	return catalog.KindUnknown
}

// normalize strips parameters and case: "Audio/MPEG; x=y" becomes "audio/mpeg".
func normalize(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

var _ catalog.MimeClassifier = (*Classifier)(nil)
