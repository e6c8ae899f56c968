package catalog

import "time"

// MediaKind is the coarse classification of a catalog item.
type MediaKind string

const (
	KindVideo     MediaKind = "video"
	KindAudio     MediaKind = "audio"
	KindImage     MediaKind = "image"
	KindDirectory MediaKind = "directory"
	KindUnknown   MediaKind = "unknown"
)

// DirectoryMimeType is the type string recorded for directory items.
// Directories are never sniffed; ingestion forces this type.
const DirectoryMimeType = "inode/directory"

// ItemType is a deduplicated type registry row, keyed by the MIME type string.
type ItemType struct {
	ID   int64     `db:"id"`
	Type string    `db:"type"`
	Kind MediaKind `db:"kind"`
}

// Item is a catalog entry for a file or directory.
// Nullable metadata is nil until UpdateMetadata fills it in.
type Item struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Type            string    `db:"type" json:"type"`
	Kind            MediaKind `db:"kind" json:"kind"`
	Path            string    `db:"path" json:"path"`
	Duration        *int64    `db:"duration" json:"duration"`
	Title           *string   `db:"title" json:"title"`
	Artists         []string  `db:"-" json:"artists"`
	Album           *string   `db:"album" json:"album"`
	Year            *int64    `db:"year" json:"year"`
	VideoCodec      *string   `db:"video_codec" json:"video_codec"`
	VideoFrameRate  *int64    `db:"video_frame_rate" json:"video_frame_rate"`
	VideoBitRate    *int64    `db:"video_bit_rate" json:"video_bit_rate"`
	Height          *int64    `db:"height" json:"height"`
	Width           *int64    `db:"width" json:"width"`
	AudioCodec      *string   `db:"audio_codec" json:"audio_codec"`
	AudioChannels   *int64    `db:"audio_channels" json:"audio_channels"`
	AudioSampleRate *int64    `db:"audio_sample_rate" json:"audio_sample_rate"`
	AudioBitRate    *int64    `db:"audio_bit_rate" json:"audio_bit_rate"`
	Views           int64     `db:"views" json:"views"`
	IsRoot          bool      `db:"is_root" json:"is_root"`
	TimeAdded       time.Time `db:"time_added" json:"time_added"`
}

// IsDirectory reports whether the item may have children.
func (i *Item) IsDirectory() bool {
	return i.Kind == KindDirectory
}

// ItemMetadata carries the descriptive fields of an item.
// Nil fields are left untouched by UpdateMetadata; a non-nil Artists slice
// replaces the item's artist list.
type ItemMetadata struct {
	Duration        *int64
	Title           *string
	Artists         []string
	Album           *string
	Year            *int64
	VideoCodec      *string
	VideoFrameRate  *int64
	VideoBitRate    *int64
	Height          *int64
	Width           *int64
	AudioCodec      *string
	AudioChannels   *int64
	AudioSampleRate *int64
	AudioBitRate    *int64
}

// TreeNode is a serialized item with its permission-filtered children
// materialized recursively.
type TreeNode struct {
	*Item
	Children []*TreeNode `json:"children"`
}

// User is a catalog account. Superusers are the targets of "admin" grants.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsSuperuser  bool      `db:"is_superuser" json:"is_superuser"`
	Token        string    `db:"token" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Accessibility is the per-(user, item) grant record.
type Accessibility struct {
	UserID       int64     `db:"user_id"`
	ItemID       int64     `db:"item_id"`
	Accessible   bool      `db:"accessible"`
	LastModified time.Time `db:"last_modified"`
}

// Rating is a single 0..10 score a user gave an item.
type Rating struct {
	ID     int64     `db:"id"`
	UserID int64     `db:"user_id" validate:"required"`
	ItemID int64     `db:"item_id" validate:"required"`
	Rating int       `db:"rating" validate:"min=0,max=10"`
	Time   time.Time `db:"time"`
}

// Suggestion is a direct recommendation from one user to another.
type Suggestion struct {
	ID         int64     `db:"id"`
	FromUserID int64     `db:"from_user_id"`
	ToUserID   int64     `db:"to_user_id"`
	ItemID     int64     `db:"item_id"`
	Time       time.Time `db:"time"`
}

// Operation is a journal entry for a catalog-mutating command.
type Operation struct {
	ID         int64      `db:"id"`
	Operation  string     `db:"operation"`
	Parameters string     `db:"parameters"`
	StartedAt  time.Time  `db:"started_at"`
	FinishedAt *time.Time `db:"finished_at"`
	Status     string     `db:"status"`
}
