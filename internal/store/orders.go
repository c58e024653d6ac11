package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/safar/maison-store/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const orderIDPrefix = "ord_"

// OrderInput is everything an order is built from. Id, date and status are
// assigned by CreateOrder.
type OrderInput struct {
	Items           []models.CartItem
	Subtotal        decimal.Decimal
	Shipping        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	ShippingAddress models.ShippingAddress
	PaymentMethod   models.PaymentMethod
	CardLast4       string
}

func (in OrderInput) validate() error {
	if len(in.Items) == 0 {
		return ErrEmptyCart
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: product %d has quantity %d", ErrInvalidOrder, item.ID, item.Quantity)
		}
	}
	if err := in.ShippingAddress.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}
	if !in.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidOrder, in.PaymentMethod)
	}
	return nil
}

// CreateOrder records a new processing order at the head of the history and
// empties the cart. The order is kept even if the snapshot write fails, in
// which case it is returned together with the error.
func (s *Store) CreateOrder(ctx context.Context, in OrderInput) (models.Order, error) {
	if err := in.validate(); err != nil {
		return models.Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Truncate(time.Millisecond)

	order := models.Order{
		ID:              s.nextOrderIDLocked(now),
		Date:            now,
		Items:           models.CloneItems(in.Items),
		Subtotal:        in.Subtotal,
		Shipping:        in.Shipping,
		Tax:             in.Tax,
		Total:           in.Total,
		Status:          models.OrderStatusProcessing,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
	}
	if in.PaymentMethod == models.PaymentMethodCredit {
		order.CardLast4 = in.CardLast4
	}

	s.orders = append([]models.Order{order}, s.orders...)
	s.cart = []models.CartItem{}

	s.metrics.OrderCreated()
	s.metrics.CartMutation("clear")
	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"items":    len(order.Items),
		"total":    order.Total.String(),
	}).Info("order created")

	return order.Clone(), s.persistLocked(ctx)
}

// nextOrderIDLocked derives "ord_<unix millis>" from now, moving forward one
// millisecond at a time until the id is unused.
func (s *Store) nextOrderIDLocked(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= s.lastOrderMillis {
		ms = s.lastOrderMillis + 1
	}
	for s.hasOrderLocked(orderIDPrefix + strconv.FormatInt(ms, 10)) {
		ms++
	}
	s.lastOrderMillis = ms
	return orderIDPrefix + strconv.FormatInt(ms, 10)
}

func (s *Store) hasOrderLocked(id string) bool {
	_, ok := s.findOrderLocked(id)
	return ok
}

func orderMillis(id string) (int64, bool) {
	rest, ok := strings.CutPrefix(id, orderIDPrefix)
	if !ok {
		return 0, false
	}
	ms, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}

func (s *Store) findOrderLocked(id string) (int, bool) {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// GetOrder reports false when no order has the id.
func (s *Store) GetOrder(orderID string) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.findOrderLocked(orderID)
	if !ok {
		return models.Order{}, false
	}
	return s.orders[i].Clone(), true
}

// Orders returns the history newest first.
func (s *Store) Orders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out
}

// UpdateOrderStatus lets an outside fulfillment system move an order forward.
// Status never moves back, and a tracking number is only taken together with
// shipped or delivered. An empty trackingNumber keeps the current one.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, trackingNumber string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findOrderLocked(orderID)
	if !ok {
		return models.Order{}, ErrOrderNotFound
	}

	current := s.orders[i].Status
	if !current.CanTransitionTo(status) {
		return models.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current, status)
	}

	s.orders[i].Status = status
	if trackingNumber != "" {
		s.orders[i].TrackingNumber = trackingNumber
	}

	s.metrics.OrderStatusChanged(string(status))
	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"from":     string(current),
		"to":       string(status),
	}).Info("order status updated")

	return s.orders[i].Clone(), s.persistLocked(ctx)
}
