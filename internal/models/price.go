package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidPrice = errors.New("invalid price")

var nonNumeric = regexp.MustCompile(`[^0-9.\-]+`)

// Price is an exact amount in major currency units. It is stored and
// rendered as a display string such as "$12,500".
type Price struct {
	amount decimal.Decimal
}

func NewPrice(d decimal.Decimal) Price {
	return Price{amount: d}
}

func PriceFromInt(v int64) Price {
	return Price{amount: decimal.NewFromInt(v)}
}

// ParsePrice drops everything except digits, '.' and '-' before parsing,
// so "$12,500" and "12500 USD" both read as 12500.
func ParsePrice(s string) (Price, error) {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return Price{}, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Price{}, fmt.Errorf("%w: %q: %v", ErrInvalidPrice, s, err)
	}
	return Price{amount: d}, nil
}

func MustParsePrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Price) Decimal() decimal.Decimal {
	return p.amount
}

func (p Price) Equal(other Price) bool {
	return p.amount.Equal(other.amount)
}

// String formats with a dollar sign and thousands separators. Whole amounts
// carry no fraction, cents are padded to two places and finer amounts keep
// every digit so the string parses back to the same value.
func (p Price) String() string {
	return FormatAmount(p.amount)
}

func FormatAmount(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	var intPart, fracPart string
	if d.Equal(d.Truncate(0)) {
		intPart = d.Truncate(0).String()
	} else {
		fixed := d.String()
		if d.Equal(d.Round(2)) {
			fixed = d.StringFixed(2)
		}
		dot := strings.IndexByte(fixed, '.')
		intPart, fracPart = fixed[:dot], fixed[dot:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + "$" + b.String() + fracPart
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts the display string or a bare number.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode price: %w", err)
		}
		parsed, err := ParsePrice(s)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, data)
	}
	*p = Price{amount: d}
	return nil
}
