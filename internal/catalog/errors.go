package catalog

import "errors"

var (
	// ErrNotFound is returned when an item or user referenced by id or name does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicatePath is returned by the store when an item with the same path exists.
	// Ingestion treats it as "already ingested" and reports a count of 0.
	ErrDuplicatePath = errors.New("item path already exists")

	// ErrUnsupportedMedia marks a path whose type is not a recognized media type.
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrMissingAccessibility means a (user, item) pair has no accessibility row.
	// Seeding guarantees one row per pair, so this is a consistency fault.
	ErrMissingAccessibility = errors.New("missing accessibility row")

	// ErrCycleDetected is returned when a traversal reaches an item that is its own ancestor.
	ErrCycleDetected = errors.New("cycle detected in item tree")

	// ErrNotDirectory is returned when a non-directory item is used as a parent.
	ErrNotDirectory = errors.New("item is not a directory")

	// ErrSnapshotNotFound is returned by a Vault asked for a snapshot it does not hold.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	ErrInvalidPolicy  = errors.New("invalid permission policy")
	ErrInvalidRating  = errors.New("invalid rating")
	ErrUserExists     = errors.New("user already exists")
	ErrBadCredentials = errors.New("invalid username or password")
)
