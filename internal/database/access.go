package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mediavault/internal/catalog"
)

func (s *SQLiteDatabase) FindAccessibility(ctx context.Context, userID, itemID int64) (*catalog.Accessibility, error) {
	var acc catalog.Accessibility
	found, err := get(ctx, s.db, &acc,
		`SELECT user_id, item_id, accessible, last_modified FROM accessibility WHERE user_id = ? AND item_id = ?`,
		userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("finding accessibility: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &acc, nil
}

func (s *SQLiteDatabase) FindAccessibleItemIDs(ctx context.Context, userID int64, itemIDs []int64) (map[int64]bool, error) {
	allowed := make(map[int64]bool, len(itemIDs))
	for _, chunk := range chunks(itemIDs) {
		query, args, err := sqlx.In(
			`SELECT item_id FROM accessibility WHERE user_id = ? AND accessible = 1 AND item_id IN (?)`,
			userID, chunk)
		if err != nil {
			return nil, fmt.Errorf("building accessibility query: %w", err)
		}
		var ids []int64
		if err := s.db.SelectContext(ctx, &ids, s.db.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("finding accessible items: %w", err)
		}
		for _, id := range ids {
			allowed[id] = true
		}
	}
	return allowed, nil
}

func (s *SQLiteDatabase) FindAccessibleItems(ctx context.Context, userID int64) ([]*catalog.Item, error) {
	items, err := s.selectItems(ctx, itemSelect+`
		JOIN accessibility a ON a.item_id = i.id
		WHERE a.user_id = ? AND a.accessible = 1
		ORDER BY i.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("finding accessible items: %w", err)
	}
	return items, nil
}

func (s *SQLiteDatabase) FindLatestAccessibleItems(ctx context.Context, userID int64, limit int) ([]*catalog.Item, error) {
	items, err := s.selectItems(ctx, itemSelect+`
		JOIN accessibility a ON a.item_id = i.id
		WHERE a.user_id = ? AND a.accessible = 1 AND t.kind != ?
		ORDER BY i.time_added DESC, i.id DESC
		LIMIT ?`, userID, catalog.KindDirectory, limit)
	if err != nil {
		return nil, fmt.Errorf("finding latest items: %w", err)
	}
	return items, nil
}

func (s *SQLiteDatabase) SetAccessibility(ctx context.Context, itemID int64, userIDs []int64, accessible bool) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		modified := now()
		for _, userID := range userIDs {
			res, err := tx.ExecContext(ctx,
				`UPDATE accessibility SET accessible = ?, last_modified = ? WHERE user_id = ? AND item_id = ?`,
				accessible, modified, userID, itemID)
			if err != nil {
				return fmt.Errorf("updating accessibility: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("reading affected rows: %w", err)
			}
			if n == 0 {
				return fmt.Errorf("user %d, item %d: %w", userID, itemID, catalog.ErrMissingAccessibility)
			}
		}
		return nil
	})
}
