// Package sqlite keeps snapshots in a single local SQLite file, the on-disk
// counterpart of a browser profile's local storage.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/safar/maison-store/internal/storage"

	// Pure-Go driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_snapshots (
    namespace  TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      BLOB NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (namespace, key)
);`

type Repository struct {
	db        *sql.DB
	namespace string
}

// Open creates the file and its parent directory if needed and applies the
// schema. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path, namespace string) (*Repository, error) {
	if namespace == "" {
		namespace = storage.DefaultNamespace
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory for %q: %w", path, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// One writer; ":memory:" also needs every query on the same connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db, namespace: namespace}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Load(ctx context.Context, key storage.Key) ([]byte, error) {
	if err := storage.CheckKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM kv_snapshots WHERE namespace = ? AND key = ?`,
		r.namespace, string(key)).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: load snapshot %s: %w", key, err)
	}
	return value, nil
}

func (r *Repository) Save(ctx context.Context, key storage.Key, data []byte) error {
	if err := storage.CheckKey(key); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv_snapshots (namespace, key, value, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (namespace, key)
		 DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		r.namespace, string(key), data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite: save snapshot %s: %w", key, err)
	}
	return nil
}

var _ storage.Repository = (*Repository)(nil)
