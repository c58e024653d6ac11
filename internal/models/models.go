package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryWatch     Category = "watch"
	CategoryRing      Category = "ring"
	CategoryTie       Category = "tie"
	CategoryCufflinks Category = "cufflinks"
	CategoryBracelet  Category = "bracelet"
	CategoryPen       Category = "pen"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryWatch, CategoryRing, CategoryTie, CategoryCufflinks, CategoryBracelet, CategoryPen:
		return true
	}
	return false
}

type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Price       Price    `json:"price"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
}

// CartItem serializes flat, the product fields next to quantity.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Decimal().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

func (s OrderStatus) rank() int {
	switch s {
	case OrderStatusProcessing:
		return 1
	case OrderStatusShipped:
		return 2
	case OrderStatusDelivered:
		return 3
	}
	return 0
}

func (s OrderStatus) Valid() bool {
	return s.rank() > 0
}

// CanTransitionTo reports whether next is strictly further along than s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s.Valid() && next.Valid() && next.rank() > s.rank()
}

type PaymentMethod string

const (
	PaymentMethodCredit PaymentMethod = "credit"
	PaymentMethodPayPal PaymentMethod = "paypal"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCredit || m == PaymentMethodPayPal
}

var (
	ErrFullNameRequired   = errors.New("full name is required")
	ErrAddressRequired    = errors.New("address is required")
	ErrCityRequired       = errors.New("city is required")
	ErrPostalCodeRequired = errors.New("postal code is required")
	ErrCountryRequired    = errors.New("country is required")
)

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Validate returns every missing field, joined.
func (a ShippingAddress) Validate() error {
	var errs []error
	if a.FullName == "" {
		errs = append(errs, ErrFullNameRequired)
	}
	if a.Address == "" {
		errs = append(errs, ErrAddressRequired)
	}
	if a.City == "" {
		errs = append(errs, ErrCityRequired)
	}
	if a.PostalCode == "" {
		errs = append(errs, ErrPostalCodeRequired)
	}
	if a.Country == "" {
		errs = append(errs, ErrCountryRequired)
	}
	return errors.Join(errs...)
}

// Order keeps the camelCase field names of the stored browser snapshots.
type Order struct {
	ID              string          `json:"id"`
	Date            time.Time       `json:"date"`
	Items           []CartItem      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	CardLast4       string          `json:"cardLast4,omitempty"`
}

// Clone returns a copy that shares no slices with o.
func (o Order) Clone() Order {
	o.Items = CloneItems(o.Items)
	return o
}

func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
