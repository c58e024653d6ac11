package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/safar/maison-store/internal/catalog"
	"github.com/safar/maison-store/internal/models"
	"github.com/safar/maison-store/internal/payment"
	"github.com/safar/maison-store/internal/storage/memory"
	"github.com/safar/maison-store/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	err     error
	amounts []int64
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, amountMinor int64) (payment.Intent, error) {
	g.amounts = append(g.amounts, amountMinor)
	if g.err != nil {
		return payment.Intent{}, g.err
	}
	return payment.Intent{ClientSecret: "pi_mock_test", AmountMinor: amountMinor}, nil
}

type recordingPublisher struct {
	orders []models.Order
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, order models.Order) error {
	p.orders = append(p.orders, order)
	return p.err
}

func validRequest() Request {
	return Request{
		ShippingAddress: models.ShippingAddress{
			FullName:   "Ada Lovelace",
			Address:    "12 St James's Square",
			City:       "London",
			PostalCode: "SW1Y 4JH",
			Country:    "United Kingdom",
		},
		PaymentMethod: models.PaymentMethodCredit,
		CardNumber:    "4242 4242 4242 4242",
	}
}

func mustProduct(t *testing.T, id int64) models.Product {
	t.Helper()
	p, ok := catalog.ByID(id)
	require.True(t, ok)
	return p
}

func TestQuote(t *testing.T) {
	p := DefaultPricing()

	q := p.Quote(decimal.NewFromInt(25295))
	assert.True(t, q.Shipping.Equal(decimal.NewFromInt(15)))
	assert.True(t, q.Tax.Equal(decimal.RequireFromString("2529.5")))
	assert.True(t, q.Total.Equal(decimal.RequireFromString("27839.5")))

	zero := p.Quote(decimal.Zero)
	assert.True(t, zero.Shipping.IsZero())
	assert.True(t, zero.Tax.IsZero())
	assert.True(t, zero.Total.IsZero())

	odd := p.Quote(decimal.RequireFromString("0.05"))
	assert.True(t, odd.Tax.Equal(decimal.RequireFromString("0.01")), "got %s", odd.Tax)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2783950), MinorUnits(decimal.RequireFromString("27839.5")))
	assert.Equal(t, int64(1), MinorUnits(decimal.RequireFromString("0.005")))
	assert.Equal(t, int64(0), MinorUnits(decimal.Zero))
}

func TestLastFour(t *testing.T) {
	assert.Equal(t, "4242", LastFour("4242 4242 4242 4242"))
	assert.Equal(t, "1881", LastFour("3782-822463-11881"))
	assert.Equal(t, "", LastFour("12"))
	assert.Equal(t, "", LastFour(""))
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	st := store.New(ctx, memory.NewRepository())
	require.NoError(t, st.AddToCart(ctx, mustProduct(t, 1)))
	require.NoError(t, st.AddToCart(ctx, mustProduct(t, 1)))
	require.NoError(t, st.AddToCart(ctx, mustProduct(t, 6)))

	gateway := &fakeGateway{}
	publisher := &recordingPublisher{}
	svc := NewService(st, gateway, publisher, DefaultPricing(), nil)

	order, err := svc.Checkout(ctx, validRequest())
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(25295)))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("27839.5")))
	assert.Equal(t, "4242", order.CardLast4)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, []int64{2783950}, gateway.amounts)

	assert.Empty(t, st.Cart())
	stored, ok := st.GetOrder(order.ID)
	require.True(t, ok)
	assert.Len(t, stored.Items, 2)

	require.Len(t, publisher.orders, 1)
	assert.Equal(t, order.ID, publisher.orders[0].ID)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	ctx := context.Background()
	st := store.New(ctx, memory.NewRepository())
	gateway := &fakeGateway{}
	svc := NewService(st, gateway, nil, DefaultPricing(), nil)

	_, err := svc.Checkout(ctx, validRequest())
	assert.ErrorIs(t, err, store.ErrEmptyCart)
	assert.Empty(t, gateway.amounts)
	assert.Empty(t, st.Orders())
}

func TestCheckoutRejectsInvalidRequest(t *testing.T) {
	ctx := context.Background()
	st := store.New(ctx, memory.NewRepository())
	require.NoError(t, st.AddToCart(ctx, mustProduct(t, 6)))
	gateway := &fakeGateway{}
	svc := NewService(st, gateway, nil, DefaultPricing(), nil)

	req := validRequest()
	req.ShippingAddress.FullName = ""
	_, err := svc.Checkout(ctx, req)
	assert.ErrorIs(t, err, store.ErrInvalidOrder)
	assert.ErrorIs(t, err, models.ErrFullNameRequired)

	req = validRequest()
	req.PaymentMethod = "wire"
	_, err = svc.Checkout(ctx, req)
	assert.ErrorIs(t, err, store.ErrInvalidOrder)

	assert.Empty(t, gateway.amounts)
	assert.True(t, st.IsInCart(6))
}

func TestCheckoutPaymentFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	st := store.New(ctx, memory.NewRepository())
	require.NoError(t, st.AddToCart(ctx, mustProduct(t, 6)))

	svc := NewService(st, &fakeGateway{err: errors.New("card declined")}, nil, DefaultPricing(), nil)

	_, err := svc.Checkout(ctx, validRequest())
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.True(t, st.IsInCart(6))
	assert.Empty(t, st.Orders())
}

func TestCheckoutPublishFailureStillSucceeds(t *testing.T) {
	ctx := context.Background()
	st := store.New(ctx, memory.NewRepository())
	require.NoError(t, st.AddToCart(ctx, mustProduct(t, 6)))

	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := NewService(st, &fakeGateway{}, publisher, DefaultPricing(), nil)

	req := validRequest()
	req.PaymentMethod = models.PaymentMethodPayPal
	order, err := svc.Checkout(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, order.CardLast4)
	assert.Len(t, st.Orders(), 1)
}
