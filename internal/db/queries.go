package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/kv"
)

// Store is a kv.Store backed by the kv table.
type Store struct {
	db *sql.DB
}

var _ kv.Store = (*Store)(nil)

// NewStore wraps an initialized database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the stored values for keys. A nil keys slice returns every row.
func (s *Store) Get(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if keys != nil && len(keys) == 0 {
		return out, nil
	}

	query := "SELECT key, value FROM kv"
	args := make([]any, 0, len(keys))
	if keys != nil {
		query += " WHERE key IN (" + placeholders(len(keys)) + ")"
		for _, k := range keys {
			args = append(args, k)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.NewInternal(err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return out, nil
}

// Set upserts every item in a single transaction.
func (s *Store) Set(ctx context.Context, items map[string][]byte) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	now := time.Now().UnixMilli()
	for key, value := range items {
		if value == nil {
			value = []byte{}
		}
		if _, err := tx.ExecContext(ctx, query, key, value, now); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Remove deletes the given keys. Missing keys are ignored.
func (s *Store) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	query := "DELETE FROM kv WHERE key IN (" + placeholders(len(keys)) + ")"
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Clear deletes every row.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv"); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// LastUpdated returns when any key was last written, in epoch milliseconds.
// It reports false for an empty store.
func (s *Store) LastUpdated(ctx context.Context) (int64, bool, error) {
	var ts sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT updated_at FROM kv ORDER BY updated_at DESC LIMIT 1").Scan(&ts)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.NewInternal(err)
	}
	return ts.Int64, ts.Valid, nil
}

// placeholders returns "?, ?, ..." with n entries.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
