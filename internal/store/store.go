// Package store owns the cart, the wishlist and the order history. Every
// mutation goes through a Store method and is written through to a
// storage.Repository as a full snapshot of all three collections.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/safar/maison-store/internal/metrics"
	"github.com/safar/maison-store/internal/models"
	"github.com/safar/maison-store/internal/storage"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidOrder            = errors.New("invalid order")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrInvalidCursor           = errors.New("invalid cursor")
)

type Store struct {
	mu      sync.RWMutex
	repo    storage.Repository
	logger  *log.Entry
	metrics metrics.Recorder
	now     func() time.Time

	cart     []models.CartItem
	wishlist []models.Product
	orders   []models.Order

	lastOrderMillis int64
}

type Option func(*Store)

func WithLogger(logger *log.Entry) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m metrics.Recorder) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock replaces time.Now for order ids and dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a store and hydrates it from repo. A collection that is missing
// or unreadable starts empty; hydration itself never fails.
func New(ctx context.Context, repo storage.Repository, opts ...Option) *Store {
	s := &Store{
		repo:    repo,
		logger:  log.WithField("component", "store"),
		metrics: metrics.Noop{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cart = normalizeCart(hydrate[models.CartItem](ctx, s, storage.KeyCart), s.logger)
	s.wishlist = normalizeWishlist(hydrate[models.Product](ctx, s, storage.KeyWishlist))
	s.orders = normalizeOrders(hydrate[models.Order](ctx, s, storage.KeyOrders), s.logger)

	for _, o := range s.orders {
		if ms, ok := orderMillis(o.ID); ok && ms > s.lastOrderMillis {
			s.lastOrderMillis = ms
		}
	}

	s.recordSizesLocked()
	s.logger.WithFields(log.Fields{
		"cart_items":     len(s.cart),
		"wishlist_items": len(s.wishlist),
		"orders":         len(s.orders),
	}).Debug("store hydrated")

	return s
}

func hydrate[T any](ctx context.Context, s *Store, key storage.Key) []T {
	logger := s.logger.WithField("key", string(key))

	data, err := s.repo.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.WithError(err).Warn("snapshot unavailable, starting empty")
			s.metrics.HydrationFallback(string(key))
		}
		return []T{}
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		logger.WithError(err).Warn("snapshot unreadable, starting empty")
		s.metrics.HydrationFallback(string(key))
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

// normalizeCart enforces one line per product id with quantity >= 1 on data
// written by older clients.
func normalizeCart(items []models.CartItem, logger *log.Entry) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			logger.WithField("product_id", item.ID).Warn("merged duplicate cart line")
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

func normalizeWishlist(items []models.Product) []models.Product {
	out := make([]models.Product, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, p := range items {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// normalizeOrders restores newest-first order and keeps the first of any
// repeated id.
func normalizeOrders(orders []models.Order, logger *log.Entry) []models.Order {
	out := make([]models.Order, 0, len(orders))
	seen := make(map[string]bool, len(orders))
	for _, o := range orders {
		if seen[o.ID] {
			logger.WithField("order_id", o.ID).Warn("dropped duplicate order")
			continue
		}
		seen[o.ID] = true
		out = append(out, o)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// persistLocked writes every collection. The in-memory state is kept even
// when a write fails; the joined error reports which keys were not saved.
func (s *Store) persistLocked(ctx context.Context) error {
	start := time.Now()
	defer func() {
		s.metrics.PersistDuration(time.Since(start))
		s.recordSizesLocked()
	}()

	snapshots := map[storage.Key]any{
		storage.KeyCart:     s.cart,
		storage.KeyWishlist: s.wishlist,
		storage.KeyOrders:   s.orders,
	}

	var errs []error
	for _, key := range storage.Keys {
		data, err := json.Marshal(snapshots[key])
		if err == nil {
			err = s.repo.Save(ctx, key, data)
		}
		if err != nil {
			s.metrics.PersistFailed(string(key))
			s.logger.WithField("key", string(key)).WithError(err).Error("persist snapshot")
			errs = append(errs, fmt.Errorf("persist %s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (s *Store) recordSizesLocked() {
	count := 0
	for _, item := range s.cart {
		count += item.Quantity
	}
	s.metrics.CollectionSizes(count, len(s.wishlist), len(s.orders))
}
