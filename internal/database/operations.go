package database

import (
	"context"
	"database/sql"
	"fmt"

	"mediavault/internal/catalog"
)

const operationColumns = `id, operation, parameters, started_at, finished_at, status`

func (s *SQLiteDatabase) CreateOperation(ctx context.Context, operation, parameters string) (*catalog.Operation, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO operations (operation, parameters, started_at, status) VALUES (?, ?, ?, 'running')`,
		operation, parameters, now())
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading operation id: %w", err)
	}

	var op catalog.Operation
	if err := s.db.GetContext(ctx, &op, `SELECT `+operationColumns+` FROM operations WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("reading operation: %w", err)
	}
	return &op, nil
}

func (s *SQLiteDatabase) FinishOperation(ctx context.Context, id int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE operations SET finished_at = ?, status = ? WHERE id = ?`,
		sql.NullTime{Time: now(), Valid: true}, status, id)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(ctx context.Context, limit int) ([]*catalog.Operation, error) {
	var ops []*catalog.Operation
	err := s.db.SelectContext(ctx, &ops,
		`SELECT `+operationColumns+` FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

func (s *SQLiteDatabase) MaxOperationID(ctx context.Context) (int64, error) {
	var id int64
	if err := s.db.GetContext(ctx, &id, `SELECT COALESCE(MAX(id), 0) FROM operations`); err != nil {
		return 0, fmt.Errorf("getting max operation id: %w", err)
	}
	return id, nil
}
