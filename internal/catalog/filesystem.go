package catalog

// FilesystemManager provides an interface for filesystem operations.
// It abstracts file access to enable testing without touching the real filesystem.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	Resolve(rawPath string) (*Path, error)

	// IsDirectory reports whether path is a directory. Symlinks are not followed.
	IsDirectory(path string) (bool, error)

	// ListDirectory returns the names of the direct entries of a directory, sorted.
	ListDirectory(path string) ([]string, error)

	// Exists reports whether anything exists at path.
	Exists(path string) bool

	// IsIgnored reports whether path, found while walking root, matches an ignore pattern.
	IsIgnored(path, root string) (bool, error)
}

// MimeClassifier sniffs file types and maps them onto media kinds.
type MimeClassifier interface {
	// Classify returns the MIME type of the file at path.
	Classify(path string) (string, error)

	// IsMedia reports whether the MIME type is one the catalog accepts.
	IsMedia(mimeType string) bool

	// MediaType maps an accepted MIME type onto its kind.
	MediaType(mimeType string) MediaKind
}
