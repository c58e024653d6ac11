// Package checkout turns the current cart into an order: it prices the cart,
// asks the payment gateway for an intent and records the order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/safar/maison-store/internal/events"
	"github.com/safar/maison-store/internal/models"
	"github.com/safar/maison-store/internal/payment"
	"github.com/safar/maison-store/internal/store"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrPaymentFailed = errors.New("payment failed")

var hundred = decimal.NewFromInt(100)

type Pricing struct {
	ShippingFlat decimal.Decimal
	TaxRate      decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		ShippingFlat: decimal.NewFromInt(15),
		TaxRate:      decimal.RequireFromString("0.1"),
	}
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Quote charges the flat shipping fee only on a non-empty subtotal. Tax is
// rounded to cents.
func (p Pricing) Quote(subtotal decimal.Decimal) Totals {
	shipping := decimal.Zero
	if subtotal.IsPositive() {
		shipping = p.ShippingFlat
	}
	tax := subtotal.Mul(p.TaxRate).Round(2)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// MinorUnits converts a major-unit amount to cents.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// OrderStore is the part of store.Store checkout needs.
type OrderStore interface {
	Cart() []models.CartItem
	CreateOrder(ctx context.Context, in store.OrderInput) (models.Order, error)
}

type Request struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod"`
	CardNumber      string                 `json:"cardNumber,omitempty"`
}

type Service struct {
	store     OrderStore
	gateway   payment.Gateway
	publisher events.Publisher
	pricing   Pricing
	logger    *log.Entry
}

func NewService(st OrderStore, gateway payment.Gateway, publisher events.Publisher, pricing Pricing, logger *log.Entry) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	return &Service{
		store:     st,
		gateway:   gateway,
		publisher: publisher,
		pricing:   pricing,
		logger:    logger,
	}
}

func (s *Service) Pricing() Pricing {
	return s.pricing
}

// Checkout places an order for everything in the cart. An empty cart is
// rejected with store.ErrEmptyCart before any payment is attempted.
func (s *Service) Checkout(ctx context.Context, req Request) (models.Order, error) {
	items := s.store.Cart()
	if len(items) == 0 {
		return models.Order{}, store.ErrEmptyCart
	}
	if err := req.ShippingAddress.Validate(); err != nil {
		return models.Order{}, fmt.Errorf("%w: %w", store.ErrInvalidOrder, err)
	}
	if !req.PaymentMethod.Valid() {
		return models.Order{}, fmt.Errorf("%w: unknown payment method %q", store.ErrInvalidOrder, req.PaymentMethod)
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	totals := s.pricing.Quote(subtotal)

	intent, err := s.gateway.CreatePaymentIntent(ctx, MinorUnits(totals.Total))
	if err != nil {
		s.logger.WithError(err).Warn("payment intent failed")
		return models.Order{}, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}

	in := store.OrderInput{
		Items:           items,
		Subtotal:        totals.Subtotal,
		Shipping:        totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	}
	if req.PaymentMethod == models.PaymentMethodCredit {
		in.CardLast4 = LastFour(req.CardNumber)
	}

	order, err := s.store.CreateOrder(ctx, in)
	if err != nil {
		if order.ID == "" {
			return models.Order{}, err
		}
		// The order exists in memory; only the snapshot write failed.
		s.logger.WithField("order_id", order.ID).WithError(err).Warn("order created but not persisted")
	}

	logger := s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"amount_minor": intent.AmountMinor,
	})
	if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
		logger.WithError(err).Warn("publish order event")
	}
	logger.Info("checkout complete")

	return order, nil
}

// LastFour returns the last four digits of a card number, ignoring spaces
// and dashes, or "" if there are fewer than four digits.
func LastFour(cardNumber string) string {
	var digits strings.Builder
	for _, r := range cardNumber {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 4 {
		return ""
	}
	return d[len(d)-4:]
}
