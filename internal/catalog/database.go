package catalog

import "context"

// Database provides an interface for catalog storage operations.
// Lookups return (nil, nil) when nothing matches; the service decides whether
// that is an error for the caller.
type Database interface {
	// User operations

	// CreateUser inserts the user and, in the same transaction, seeds one
	// denied accessibility row per existing item. Sets user.ID.
	CreateUser(ctx context.Context, user *User) error

	FindUserByID(ctx context.Context, id int64) (*User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindUserByToken(ctx context.Context, token string) (*User, error)

	// ListUsers returns all users ordered by id.
	ListUsers(ctx context.Context) ([]*User, error)

	// ListSuperusers returns all users with IsSuperuser set, ordered by id.
	ListSuperusers(ctx context.Context) ([]*User, error)

	// Item operations

	// FindOrCreateItemType returns the type row for mimeType, creating it with kind if needed.
	FindOrCreateItemType(ctx context.Context, mimeType string, kind MediaKind) (*ItemType, error)

	// CreateItem inserts the item, appends it to parentID's children (when
	// parentID is non-nil) and seeds one denied accessibility row per existing
	// user, all in one transaction. Returns ErrDuplicatePath if the path is taken.
	// Sets item.ID.
	CreateItem(ctx context.Context, item *Item, typeID int64, parentID *int64) error

	FindItemByID(ctx context.Context, id int64) (*Item, error)
	FindItemByPath(ctx context.Context, path string) (*Item, error)

	// ListItems returns every item ordered by id.
	ListItems(ctx context.Context) ([]*Item, error)

	// FindRootItems returns items flagged is_root, ordered by id.
	FindRootItems(ctx context.Context) ([]*Item, error)

	// FindChildren returns the direct children of an item in insertion order.
	FindChildren(ctx context.Context, parentID int64) ([]*Item, error)

	// FindRootFlagMismatches returns items whose is_root flag disagrees with
	// whether they have a parent edge.
	FindRootFlagMismatches(ctx context.Context) ([]*Item, error)

	// DeleteItem removes one item. Accessibility, ratings, suggestions, edges
	// and seen-by rows referencing it are removed with it. Missing ids are a no-op.
	DeleteItem(ctx context.Context, id int64) error

	// UpdateItemMetadata stores descriptive fields, creating album, artist and
	// codec lookup rows on first use.
	UpdateItemMetadata(ctx context.Context, id int64, meta *ItemMetadata) error

	// Accessibility operations

	FindAccessibility(ctx context.Context, userID, itemID int64) (*Accessibility, error)

	// FindAccessibleItemIDs returns the subset of itemIDs the user may access.
	FindAccessibleItemIDs(ctx context.Context, userID int64, itemIDs []int64) (map[int64]bool, error)

	// FindAccessibleItems returns every item the user may access, ordered by id.
	FindAccessibleItems(ctx context.Context, userID int64) ([]*Item, error)

	// FindLatestAccessibleItems returns accessible non-directory items, newest first.
	FindLatestAccessibleItems(ctx context.Context, userID int64, limit int) ([]*Item, error)

	// SetAccessibility flips the rows for (userIDs, itemID) in one transaction.
	// If any row is missing nothing is changed and ErrMissingAccessibility is returned.
	SetAccessibility(ctx context.Context, itemID int64, userIDs []int64, accessible bool) error

	// Activity operations

	// RecordView increments the view counter and adds the user to seen_by.
	RecordView(ctx context.Context, itemID, userID int64) error

	// FindSeenItemIDs returns the ids of items the user has seen.
	FindSeenItemIDs(ctx context.Context, userID int64) (map[int64]bool, error)

	CreateRating(ctx context.Context, rating *Rating) error

	// FindAverageRatings returns the mean rating per item, over all users.
	// Items without ratings are absent from the map.
	FindAverageRatings(ctx context.Context, itemIDs []int64) (map[int64]float64, error)

	CreateSuggestion(ctx context.Context, suggestion *Suggestion) error

	// FindSuggestionsForUser returns suggestions addressed to the user, newest first.
	FindSuggestionsForUser(ctx context.Context, userID int64) ([]*Suggestion, error)

	// Operation journal

	CreateOperation(ctx context.Context, operation, parameters string) (*Operation, error)
	FinishOperation(ctx context.Context, id int64, status string) error

	// ListOperations returns the most recent operations, newest first.
	ListOperations(ctx context.Context, limit int) ([]*Operation, error)

	// MaxOperationID returns the highest journal id, or 0 when empty.
	MaxOperationID(ctx context.Context) (int64, error)

	// BackupTo writes a consistent copy of the database to destPath.
	BackupTo(destPath string) error

	// Close closes the database connection.
	Close() error
}
