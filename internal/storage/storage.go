// Package storage defines the durable key-value boundary the store writes
// its snapshots through. Each backend keeps one serialized collection per key.
package storage

import (
	"context"
	"errors"
	"fmt"
)

type Key string

const (
	KeyCart     Key = "cart"
	KeyWishlist Key = "wishlist"
	KeyOrders   Key = "orders"
)

// Keys lists every collection the store persists, in write order.
var Keys = []Key{KeyCart, KeyWishlist, KeyOrders}

const DefaultNamespace = "maison"

var ErrNotFound = errors.New("snapshot not found")

// Repository loads and saves raw snapshots. Load returns ErrNotFound when
// nothing has been saved under key yet.
type Repository interface {
	Load(ctx context.Context, key Key) ([]byte, error)
	Save(ctx context.Context, key Key, data []byte) error
}

func (k Key) Valid() bool {
	return k == KeyCart || k == KeyWishlist || k == KeyOrders
}

func CheckKey(key Key) error {
	if !key.Valid() {
		return fmt.Errorf("unknown snapshot key %q", string(key))
	}
	return nil
}
