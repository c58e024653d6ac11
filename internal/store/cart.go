package store

import (
	"context"

	"github.com/safar/maison-store/internal/models"
	"github.com/shopspring/decimal"
)

// AddToCart bumps the quantity of an existing line or appends a new one.
func (s *Store) AddToCart(ctx context.Context, product models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addToCartLocked(product)
	s.metrics.CartMutation("add")
	return s.persistLocked(ctx)
}

func (s *Store) addToCartLocked(product models.Product) {
	for i := range s.cart {
		if s.cart[i].ID == product.ID {
			s.cart[i].Quantity++
			return
		}
	}
	s.cart = append(s.cart, models.CartItem{Product: product, Quantity: 1})
}

// RemoveFromCart is a no-op when productID is not in the cart.
func (s *Store) RemoveFromCart(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeFromCartLocked(productID)
	s.metrics.CartMutation("remove")
	return s.persistLocked(ctx)
}

func (s *Store) removeFromCartLocked(productID int64) {
	kept := make([]models.CartItem, 0, len(s.cart))
	for _, item := range s.cart {
		if item.ID != productID {
			kept = append(kept, item)
		}
	}
	s.cart = kept
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes it. Unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeFromCartLocked(productID)
		s.metrics.CartMutation("remove")
		return s.persistLocked(ctx)
	}

	for i := range s.cart {
		if s.cart[i].ID == productID {
			s.cart[i].Quantity = quantity
			break
		}
	}
	s.metrics.CartMutation("update")
	return s.persistLocked(ctx)
}

func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = []models.CartItem{}
	s.metrics.CartMutation("clear")
	return s.persistLocked(ctx)
}

func (s *Store) Cart() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CartItem, len(s.cart))
	copy(out, s.cart)
	return out
}

// CartSummary is the cart with its derived totals, read under one lock.
type CartSummary struct {
	Items []models.CartItem
	Total decimal.Decimal
	Count int
}

func (s *Store) CartSummary() CartSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := CartSummary{
		Items: make([]models.CartItem, len(s.cart)),
		Total: decimal.Zero,
	}
	copy(summary.Items, s.cart)
	for _, item := range s.cart {
		summary.Total = summary.Total.Add(item.LineTotal())
		summary.Count += item.Quantity
	}
	return summary
}

func (s *Store) CartTotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, item := range s.cart {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (s *Store) CartItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.cart {
		count += item.Quantity
	}
	return count
}

func (s *Store) IsInCart(productID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.cart {
		if item.ID == productID {
			return true
		}
	}
	return false
}
