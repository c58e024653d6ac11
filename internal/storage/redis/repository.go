package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/safar/maison-store/internal/storage"
)

// Repository keeps each snapshot as a plain string value under
// "<namespace>:snapshot:<key>". Values never expire.
type Repository struct {
	client    *redis.Client
	namespace string
}

func NewRepository(client *redis.Client, namespace string) *Repository {
	if namespace == "" {
		namespace = storage.DefaultNamespace
	}
	return &Repository{client: client, namespace: namespace}
}

// Dial connects to addr and checks the server answers.
func Dial(ctx context.Context, addr, namespace string) (*Repository, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRepository(client, namespace), nil
}

func (r *Repository) GenerateKey(key storage.Key) string {
	return fmt.Sprintf("%s:snapshot:%s", r.namespace, key)
}

func (r *Repository) Load(ctx context.Context, key storage.Key) ([]byte, error) {
	if err := storage.CheckKey(key); err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, r.GenerateKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return data, nil
}

func (r *Repository) Save(ctx context.Context, key storage.Key, data []byte) error {
	if err := storage.CheckKey(key); err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.GenerateKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.client.Close()
}

var _ storage.Repository = (*Repository)(nil)
