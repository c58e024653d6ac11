package store

import (
	"context"

	"github.com/safar/maison-store/internal/models"
)

// AddToWishlist is idempotent per product id.
func (s *Store) AddToWishlist(ctx context.Context, product models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inWishlistLocked(product.ID) {
		s.wishlist = append(s.wishlist, product)
	}
	s.metrics.WishlistMutation("add")
	return s.persistLocked(ctx)
}

func (s *Store) RemoveFromWishlist(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeFromWishlistLocked(productID)
	s.metrics.WishlistMutation("remove")
	return s.persistLocked(ctx)
}

// MoveToCart adds the wishlisted product to the cart and drops it from the
// wishlist in one step. Nothing happens if productID is not wishlisted.
func (s *Store) MoveToCart(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		product models.Product
		found   bool
	)
	for _, p := range s.wishlist {
		if p.ID == productID {
			product, found = p, true
			break
		}
	}
	if !found {
		return nil
	}

	s.addToCartLocked(product)
	s.removeFromWishlistLocked(productID)
	s.metrics.CartMutation("add")
	s.metrics.WishlistMutation("move_to_cart")
	return s.persistLocked(ctx)
}

func (s *Store) removeFromWishlistLocked(productID int64) {
	kept := make([]models.Product, 0, len(s.wishlist))
	for _, p := range s.wishlist {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	s.wishlist = kept
}

func (s *Store) inWishlistLocked(productID int64) bool {
	for _, p := range s.wishlist {
		if p.ID == productID {
			return true
		}
	}
	return false
}

func (s *Store) Wishlist() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, len(s.wishlist))
	copy(out, s.wishlist)
	return out
}

func (s *Store) IsInWishlist(productID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.inWishlistLocked(productID)
}
