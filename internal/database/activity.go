package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mediavault/internal/catalog"
)

func (s *SQLiteDatabase) RecordView(ctx context.Context, itemID, userID int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE items SET views = views + 1 WHERE id = ?`, itemID)
		if err != nil {
			return fmt.Errorf("counting view: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("item %d: %w", itemID, catalog.ErrNotFound)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO item_seen_by (item_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING`, itemID, userID)
		if err != nil {
			return fmt.Errorf("marking seen: %w", err)
		}
		return nil
	})
}

func (s *SQLiteDatabase) FindSeenItemIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT item_id FROM item_seen_by WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("finding seen items: %w", err)
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	return seen, nil
}

func (s *SQLiteDatabase) CreateRating(ctx context.Context, rating *catalog.Rating) error {
	res, err := s.db.NamedExecContext(ctx,
		`INSERT INTO ratings (user_id, item_id, rating, time) VALUES (:user_id, :item_id, :rating, :time)`, rating)
	if err != nil {
		return fmt.Errorf("inserting rating: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading rating id: %w", err)
	}
	rating.ID = id
	return nil
}

func (s *SQLiteDatabase) FindAverageRatings(ctx context.Context, itemIDs []int64) (map[int64]float64, error) {
	averages := make(map[int64]float64, len(itemIDs))
	for _, chunk := range chunks(itemIDs) {
		query, args, err := sqlx.In(
			`SELECT item_id, AVG(rating) AS average FROM ratings WHERE item_id IN (?) GROUP BY item_id`, chunk)
		if err != nil {
			return nil, fmt.Errorf("building rating query: %w", err)
		}
		var rows []struct {
			ItemID  int64   `db:"item_id"`
			Average float64 `db:"average"`
		}
		if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("averaging ratings: %w", err)
		}
		for _, row := range rows {
			averages[row.ItemID] = row.Average
		}
	}
	return averages, nil
}

func (s *SQLiteDatabase) CreateSuggestion(ctx context.Context, suggestion *catalog.Suggestion) error {
	res, err := s.db.NamedExecContext(ctx,
		`INSERT INTO suggestions (from_user_id, to_user_id, item_id, time)
		 VALUES (:from_user_id, :to_user_id, :item_id, :time)`, suggestion)
	if err != nil {
		return fmt.Errorf("inserting suggestion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading suggestion id: %w", err)
	}
	suggestion.ID = id
	return nil
}

func (s *SQLiteDatabase) FindSuggestionsForUser(ctx context.Context, userID int64) ([]*catalog.Suggestion, error) {
	var suggestions []*catalog.Suggestion
	err := s.db.SelectContext(ctx, &suggestions,
		`SELECT id, from_user_id, to_user_id, item_id, time FROM suggestions
		 WHERE to_user_id = ? ORDER BY time DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("finding suggestions: %w", err)
	}
	return suggestions, nil
}
