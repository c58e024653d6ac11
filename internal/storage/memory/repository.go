package memory

import (
	"context"
	"sync"

	"github.com/safar/maison-store/internal/storage"
)

// Repository keeps snapshots in process memory. Nothing survives a restart.
type Repository struct {
	mu    sync.RWMutex
	items map[storage.Key][]byte
}

func NewRepository() *Repository {
	return &Repository{
		items: make(map[storage.Key][]byte),
	}
}

func (r *Repository) Load(_ context.Context, key storage.Key) ([]byte, error) {
	if err := storage.CheckKey(key); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.items[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (r *Repository) Save(_ context.Context, key storage.Key, data []byte) error {
	if err := storage.CheckKey(key); err != nil {
		return err
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[key] = stored
	return nil
}

var _ storage.Repository = (*Repository)(nil)
