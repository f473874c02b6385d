package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/tome/internal/bookmark"
	"github.com/hpungsan/tome/internal/errors"
)

// BookmarkStore persists bookmark sets in the bookmarks table.
type BookmarkStore struct {
	db *sql.DB
}

// NewBookmarkStore returns a store over an initialized database.
func NewBookmarkStore(db *sql.DB) *BookmarkStore {
	return &BookmarkStore{db: db}
}

// Row is one stored bookmark.
type Row struct {
	ID        string
	Key       string
	CreatedAt int64
}

// Load returns every stored key.
func (s *BookmarkStore) Load(ctx context.Context) (bookmark.Set, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return bookmark.Set{}, err
	}
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return bookmark.NewSet(keys...), nil
}

// List returns stored rows oldest first.
func (s *BookmarkStore) List(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, key, created_at FROM bookmarks ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Key, &r.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// Save makes the table hold exactly the keys of set. Rows for keys that stay
// keep their id and created_at. Runs in one transaction.
func (s *BookmarkStore) Save(ctx context.Context, set bookmark.Set) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	existing, err := storedKeys(ctx, tx)
	if err != nil {
		return err
	}

	for key := range existing {
		if set.Has(key) {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM bookmarks WHERE key = ?`, key); err != nil {
			return errors.NewInternal(err)
		}
	}

	now := time.Now()
	entropy := ulid.Monotonic(rand.Reader, 0)
	for _, key := range set.Keys() {
		if existing[key] {
			continue
		}
		id := ulid.MustNew(ulid.Timestamp(now), entropy).String()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bookmarks (id, key, created_at) VALUES (?, ?, ?)`,
			id, key, now.Unix(),
		); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func storedKeys(ctx context.Context, tx *sql.Tx) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT key FROM bookmarks`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, errors.NewInternal(err)
		}
		keys[k] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return keys, nil
}
