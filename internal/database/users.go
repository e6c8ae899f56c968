package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mediavault/internal/catalog"
)

const userColumns = `id, username, password_hash, is_superuser, token, created_at`

func (s *SQLiteDatabase) CreateUser(ctx context.Context, user *catalog.User) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx,
			`INSERT INTO users (username, password_hash, is_superuser, token, created_at)
			 VALUES (:username, :password_hash, :is_superuser, :token, :created_at)`, user)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("inserting user %s: %w", user.Username, catalog.ErrUserExists)
			}
			return fmt.Errorf("inserting user: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading user id: %w", err)
		}

		// The new user starts with a denied row for every existing item.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO accessibility (user_id, item_id, accessible, last_modified)
			 SELECT ?, id, 0, ? FROM items`, id, now())
		if err != nil {
			return fmt.Errorf("seeding accessibility: %w", err)
		}

		user.ID = id
		return nil
	})
}

func (s *SQLiteDatabase) FindUserByID(ctx context.Context, id int64) (*catalog.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *SQLiteDatabase) FindUserByUsername(ctx context.Context, username string) (*catalog.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *SQLiteDatabase) FindUserByToken(ctx context.Context, token string) (*catalog.User, error) {
	return s.findUser(ctx, "token = ?", token)
}

func (s *SQLiteDatabase) findUser(ctx context.Context, where string, arg any) (*catalog.User, error) {
	var user catalog.User
	found, err := get(ctx, s.db, &user, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

func (s *SQLiteDatabase) ListUsers(ctx context.Context) ([]*catalog.User, error) {
	var users []*catalog.User
	if err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (s *SQLiteDatabase) ListSuperusers(ctx context.Context) ([]*catalog.User, error) {
	var users []*catalog.User
	err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users WHERE is_superuser = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing superusers: %w", err)
	}
	return users, nil
}
