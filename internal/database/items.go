package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"mediavault/internal/catalog"
)

// itemSelect resolves an item row together with its type and lookup names.
const itemSelect = `
SELECT i.id, i.name, t.type, t.kind, i.path, i.duration, i.title,
       al.name AS album, i.year,
       vc.codec AS video_codec, i.video_frame_rate, i.video_bit_rate, i.height, i.width,
       ac.codec AS audio_codec, i.audio_channels, i.audio_sample_rate, i.audio_bit_rate,
       i.views, i.is_root, i.time_added
FROM items i
JOIN item_types t ON t.id = i.type_id
LEFT JOIN albums al ON al.id = i.album_id
LEFT JOIN video_codecs vc ON vc.id = i.video_codec_id
LEFT JOIN audio_codecs ac ON ac.id = i.audio_codec_id`

func (s *SQLiteDatabase) FindOrCreateItemType(ctx context.Context, mimeType string, kind catalog.MediaKind) (*catalog.ItemType, error) {
	var itemType catalog.ItemType
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO item_types (type, kind) VALUES (?, ?) ON CONFLICT(type) DO NOTHING`, mimeType, kind)
		if err != nil {
			return fmt.Errorf("inserting item type: %w", err)
		}
		return tx.GetContext(ctx, &itemType, `SELECT id, type, kind FROM item_types WHERE type = ?`, mimeType)
	})
	if err != nil {
		return nil, fmt.Errorf("finding item type %s: %w", mimeType, err)
	}
	return &itemType, nil
}

func (s *SQLiteDatabase) CreateItem(ctx context.Context, item *catalog.Item, typeID int64, parentID *int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO items (name, type_id, path, is_root, time_added) VALUES (?, ?, ?, ?, ?)`,
			item.Name, typeID, item.Path, item.IsRoot, item.TimeAdded)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("inserting %s: %w", item.Path, catalog.ErrDuplicatePath)
			}
			return fmt.Errorf("inserting item: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading item id: %w", err)
		}

		if parentID != nil {
			var position int64
			err := tx.GetContext(ctx, &position,
				`SELECT COALESCE(MAX(position) + 1, 0) FROM item_children WHERE parent_id = ?`, *parentID)
			if err != nil {
				return fmt.Errorf("finding child position: %w", err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO item_children (parent_id, child_id, position) VALUES (?, ?, ?)`, *parentID, id, position)
			if err != nil {
				return fmt.Errorf("linking to parent %d: %w", *parentID, err)
			}
		}

		// Every existing user gets a denied row for the new item.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO accessibility (user_id, item_id, accessible, last_modified)
			 SELECT id, ?, 0, ? FROM users`, id, now())
		if err != nil {
			return fmt.Errorf("seeding accessibility: %w", err)
		}

		item.ID = id
		return nil
	})
}

func (s *SQLiteDatabase) FindItemByID(ctx context.Context, id int64) (*catalog.Item, error) {
	return s.findItem(ctx, "i.id = ?", id)
}

func (s *SQLiteDatabase) FindItemByPath(ctx context.Context, path string) (*catalog.Item, error) {
	return s.findItem(ctx, "i.path = ?", path)
}

func (s *SQLiteDatabase) findItem(ctx context.Context, where string, arg any) (*catalog.Item, error) {
	items, err := s.selectItems(ctx, itemSelect+` WHERE `+where, arg)
	if err != nil {
		return nil, fmt.Errorf("finding item: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

func (s *SQLiteDatabase) ListItems(ctx context.Context) ([]*catalog.Item, error) {
	items, err := s.selectItems(ctx, itemSelect+` ORDER BY i.id`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

func (s *SQLiteDatabase) FindRootItems(ctx context.Context) ([]*catalog.Item, error) {
	items, err := s.selectItems(ctx, itemSelect+` WHERE i.is_root = 1 ORDER BY i.id`)
	if err != nil {
		return nil, fmt.Errorf("finding root items: %w", err)
	}
	return items, nil
}

func (s *SQLiteDatabase) FindChildren(ctx context.Context, parentID int64) ([]*catalog.Item, error) {
	items, err := s.selectItems(ctx, itemSelect+`
		JOIN item_children c ON c.child_id = i.id
		WHERE c.parent_id = ?
		ORDER BY c.position`, parentID)
	if err != nil {
		return nil, fmt.Errorf("finding children: %w", err)
	}
	return items, nil
}

func (s *SQLiteDatabase) FindRootFlagMismatches(ctx context.Context) ([]*catalog.Item, error) {
	items, err := s.selectItems(ctx, itemSelect+`
		WHERE (i.is_root = 1 AND EXISTS (SELECT 1 FROM item_children c WHERE c.child_id = i.id))
		   OR (i.is_root = 0 AND NOT EXISTS (SELECT 1 FROM item_children c WHERE c.child_id = i.id))
		ORDER BY i.id`)
	if err != nil {
		return nil, fmt.Errorf("finding root flag mismatches: %w", err)
	}
	return items, nil
}

func (s *SQLiteDatabase) DeleteItem(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) UpdateItemMetadata(ctx context.Context, id int64, meta *catalog.ItemMetadata) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var sets []string
		var args []any
		set := func(column string, value any) {
			sets = append(sets, column+" = ?")
			args = append(args, value)
		}

		if meta.Duration != nil {
			set("duration", *meta.Duration)
		}
		if meta.Title != nil {
			set("title", *meta.Title)
		}
		if meta.Year != nil {
			set("year", *meta.Year)
		}
		if meta.VideoFrameRate != nil {
			set("video_frame_rate", *meta.VideoFrameRate)
		}
		if meta.VideoBitRate != nil {
			set("video_bit_rate", *meta.VideoBitRate)
		}
		if meta.Height != nil {
			set("height", *meta.Height)
		}
		if meta.Width != nil {
			set("width", *meta.Width)
		}
		if meta.AudioChannels != nil {
			set("audio_channels", *meta.AudioChannels)
		}
		if meta.AudioSampleRate != nil {
			set("audio_sample_rate", *meta.AudioSampleRate)
		}
		if meta.AudioBitRate != nil {
			set("audio_bit_rate", *meta.AudioBitRate)
		}

		lookups := []struct {
			value  *string
			table  string
			column string
			fk     string
		}{
			{meta.Album, "albums", "name", "album_id"},
			{meta.VideoCodec, "video_codecs", "codec", "video_codec_id"},
			{meta.AudioCodec, "audio_codecs", "codec", "audio_codec_id"},
		}
		for _, l := range lookups {
			if l.value == nil {
				continue
			}
			lookupID, err := findOrCreateLookup(ctx, tx, l.table, l.column, *l.value)
			if err != nil {
				return err
			}
			set(l.fk, lookupID)
		}

		if len(sets) > 0 {
			args = append(args, id)
			res, err := tx.ExecContext(ctx, `UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
			if err != nil {
				return fmt.Errorf("updating item: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("item %d: %w", id, catalog.ErrNotFound)
			}
		}

		if meta.Artists != nil {
			if err := replaceArtists(ctx, tx, id, meta.Artists); err != nil {
				return err
			}
		}
		return nil
	})
}

func replaceArtists(ctx context.Context, tx *sqlx.Tx, itemID int64, names []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM item_artists WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("clearing artists: %w", err)
	}
	for pos, name := range names {
		artistID, err := findOrCreateLookup(ctx, tx, "artists", "name", name)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO item_artists (item_id, artist_id, position) VALUES (?, ?, ?)
			 ON CONFLICT(item_id, artist_id) DO NOTHING`, itemID, artistID, pos)
		if err != nil {
			return fmt.Errorf("linking artist %s: %w", name, err)
		}
	}
	return nil
}

// findOrCreateLookup returns the id of the row in table whose column equals
// value, inserting it first if needed. table and column are never user input.
func findOrCreateLookup(ctx context.Context, tx *sqlx.Tx, table, column, value string) (int64, error) {
	_, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?) ON CONFLICT(%s) DO NOTHING`, table, column, column), value)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", table, err)
	}
	var id int64
	if err := tx.GetContext(ctx, &id, fmt.Sprintf(`SELECT id FROM %s WHERE %s = ?`, table, column), value); err != nil {
		return 0, fmt.Errorf("finding %s row: %w", table, err)
	}
	return id, nil
}

// selectItems runs an item query and attaches artists to the results.
func (s *SQLiteDatabase) selectItems(ctx context.Context, query string, args ...any) ([]*catalog.Item, error) {
	var items []*catalog.Item
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	if err := s.loadArtists(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *SQLiteDatabase) loadArtists(ctx context.Context, items []*catalog.Item) error {
	if len(items) == 0 {
		return nil
	}

	byID := make(map[int64]*catalog.Item, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		byID[item.ID] = item
		ids = append(ids, item.ID)
	}

	for _, chunk := range chunks(ids) {
		query, args, err := sqlx.In(`
			SELECT ia.item_id, a.name
			FROM item_artists ia
			JOIN artists a ON a.id = ia.artist_id
			WHERE ia.item_id IN (?)
			ORDER BY ia.item_id, ia.position`, chunk)
		if err != nil {
			return fmt.Errorf("building artist query: %w", err)
		}

		var rows []struct {
			ItemID int64  `db:"item_id"`
			Name   string `db:"name"`
		}
		if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
			return fmt.Errorf("loading artists: %w", err)
		}
		for _, row := range rows {
			item := byID[row.ItemID]
			item.Artists = append(item.Artists, row.Name)
		}
	}
	return nil
}
