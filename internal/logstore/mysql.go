package logstore

import (
	"context"

	"github.com/jmehdipour/dialer/internal/model"
	"github.com/jmoiron/sqlx"
)

// MySQLStore is the database-backed history, for deployments where the
// panel runs on more than one host and a shared JSON file will not do.
// Insertion order is the auto-increment id.
type MySQLStore struct {
	db *sqlx.DB
}

func NewMySQLStore(db *sqlx.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) Append(ctx context.Context, e model.CallLogEntry) error {
	const q = `
		INSERT INTO call_logs
		    (batch_id, number, status, success, call_sid, error, created_at)
		VALUES
		    (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, q,
		e.BatchID, e.Number, e.Status.String(), e.Success, e.SID, e.Error, e.Timestamp,
	)
	return err
}

func (s *MySQLStore) All(ctx context.Context) ([]model.CallLogEntry, error) {
	const q = `
		SELECT batch_id, number, status, success, call_sid, error, created_at
		FROM call_logs
		ORDER BY id ASC
	`
	var rows []model.CallLogEntry
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *MySQLStore) Cleanup(ctx context.Context, transform Transform) (int, error) {
	type row struct {
		ID    int64  `db:"id"`
		Error string `db:"error"`
	}

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, error FROM call_logs ORDER BY id ASC`); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range rows {
		if r.Error == "" {
			continue
		}
		cleaned := transform(r.Error)
		if cleaned == r.Error {
			continue
		}
		if _, err := tx.ExecContext(ctx, `UPDATE call_logs SET error = ? WHERE id = ?`, cleaned, r.ID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}
