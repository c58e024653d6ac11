package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"$12,500", "12500"},
		{"$295", "295"},
		{"$1,950.50", "1950.5"},
		{"12500 USD", "12500"},
		{"-$40", "-40"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			p, err := ParsePrice(tc.in)
			require.NoError(t, err)
			assert.True(t, p.Decimal().Equal(decimal.RequireFromString(tc.want)), "got %s", p.Decimal())
		})
	}
}

func TestParsePriceRejectsNonNumeric(t *testing.T) {
	for _, in := range []string{"", "abc", "$", "1.2.3"} {
		_, err := ParsePrice(in)
		assert.ErrorIs(t, err, ErrInvalidPrice, in)
	}
}

func TestPriceString(t *testing.T) {
	assert.Equal(t, "$12,500", PriceFromInt(12500).String())
	assert.Equal(t, "$295", PriceFromInt(295).String())
	assert.Equal(t, "$1,000,000", PriceFromInt(1000000).String())
	assert.Equal(t, "$1,950.50", MustParsePrice("1950.5").String())
	assert.Equal(t, "-$40", PriceFromInt(-40).String())
}

func TestPriceJSON(t *testing.T) {
	data, err := json.Marshal(PriceFromInt(18900))
	require.NoError(t, err)
	assert.JSONEq(t, `"$18,900"`, string(data))

	var fromString Price
	require.NoError(t, json.Unmarshal([]byte(`"$18,900"`), &fromString))
	assert.True(t, fromString.Equal(PriceFromInt(18900)))

	var fromNumber Price
	require.NoError(t, json.Unmarshal([]byte(`18900.25`), &fromNumber))
	assert.True(t, fromNumber.Decimal().Equal(decimal.RequireFromString("18900.25")))

	var bad Price
	assert.Error(t, json.Unmarshal([]byte(`"n/a"`), &bad))

	for _, in := range []string{"$1.005", "$12,500.125", "$0.5", "-$3.0001"} {
		p := MustParsePrice(in)
		data, err := json.Marshal(p)
		require.NoError(t, err)

		var back Price
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, p.Equal(back), "%s encoded as %s", in, data)
	}
}

func TestPriceStringKeepsSubCentDigits(t *testing.T) {
	assert.Equal(t, "$1.005", MustParsePrice("1.005").String())
	assert.Equal(t, "$12,500.125", MustParsePrice("12500.125").String())
	assert.Equal(t, "$0.50", MustParsePrice("0.500").String())
}

func TestCartItemJSONIsFlat(t *testing.T) {
	item := CartItem{
		Product:  Product{ID: 6, Name: "SILK SATIN TIE", Price: PriceFromInt(295), Category: CategoryTie},
		Quantity: 2,
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.EqualValues(t, 6, raw["id"])
	assert.EqualValues(t, 2, raw["quantity"])
	assert.Equal(t, "$295", raw["price"])

	assert.True(t, item.LineTotal().Equal(decimal.NewFromInt(590)))
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusProcessing.CanTransitionTo(OrderStatusShipped))
	assert.True(t, OrderStatusProcessing.CanTransitionTo(OrderStatusDelivered))
	assert.True(t, OrderStatusShipped.CanTransitionTo(OrderStatusDelivered))

	assert.False(t, OrderStatusShipped.CanTransitionTo(OrderStatusProcessing))
	assert.False(t, OrderStatusDelivered.CanTransitionTo(OrderStatusShipped))
	assert.False(t, OrderStatusShipped.CanTransitionTo(OrderStatusShipped))
	assert.False(t, OrderStatusProcessing.CanTransitionTo("lost"))
}

func TestShippingAddressValidate(t *testing.T) {
	full := ShippingAddress{FullName: "A", Address: "1 Main", City: "X", PostalCode: "1", Country: "US"}
	require.NoError(t, full.Validate())

	err := ShippingAddress{FullName: "A", Country: "US"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAddressRequired))
	assert.True(t, errors.Is(err, ErrCityRequired))
	assert.True(t, errors.Is(err, ErrPostalCodeRequired))
	assert.False(t, errors.Is(err, ErrFullNameRequired))
}

func TestOrderCloneDoesNotShareItems(t *testing.T) {
	o := Order{ID: "ord_1", Items: []CartItem{{Product: Product{ID: 1}, Quantity: 1}}}
	c := o.Clone()
	c.Items[0].Quantity = 9

	assert.Equal(t, 1, o.Items[0].Quantity)
}
