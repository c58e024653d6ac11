// Package postgres stores snapshots in the kv_snapshots table, one row per
// namespace and key.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/maison-store/internal/database"
	"github.com/safar/maison-store/internal/storage"
)

type Repository struct {
	db        *sql.DB
	namespace string
	txOpts    database.TxOptions
}

func NewRepository(db *sql.DB, namespace string) *Repository {
	if namespace == "" {
		namespace = storage.DefaultNamespace
	}
	return &Repository{
		db:        db,
		namespace: namespace,
		txOpts:    database.DefaultTxOptions(),
	}
}

func (r *Repository) Load(ctx context.Context, key storage.Key) ([]byte, error) {
	if err := storage.CheckKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM kv_snapshots WHERE namespace = $1 AND key = $2`,
		r.namespace, string(key)).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}

	return value, nil
}

// Save upserts the snapshot, retrying on transient failures.
func (r *Repository) Save(ctx context.Context, key storage.Key, data []byte) error {
	if err := storage.CheckKey(key); err != nil {
		return err
	}

	err := database.WithRetry(ctx, r.db, r.txOpts, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO kv_snapshots (namespace, key, value, updated_at)
			 VALUES ($1, $2, $3::jsonb, NOW())
			 ON CONFLICT (namespace, key)
			 DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
			r.namespace, string(key), string(data))
		return err
	})
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}

	return nil
}

var _ storage.Repository = (*Repository)(nil)
