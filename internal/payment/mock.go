// Package payment stands in for a card processor. Nothing is charged.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidAmount = errors.New("amount must be greater than zero")

// Intent is what a processor hands back before the card is confirmed.
type Intent struct {
	ClientSecret string `json:"clientSecret"`
	AmountMinor  int64  `json:"amount"`
}

type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64) (Intent, error)
}

// Mock answers after a fixed delay with a random "pi_mock_" secret.
type Mock struct {
	Delay time.Duration
}

func NewMock(delay time.Duration) *Mock {
	return &Mock{Delay: delay}
}

func (m *Mock) CreatePaymentIntent(ctx context.Context, amountMinor int64) (Intent, error) {
	if amountMinor <= 0 {
		return Intent{}, fmt.Errorf("%w: %d", ErrInvalidAmount, amountMinor)
	}

	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return Intent{}, ctx.Err()
		}
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return Intent{
		ClientSecret: "pi_mock_" + token[:9],
		AmountMinor:  amountMinor,
	}, nil
}

var _ Gateway = (*Mock)(nil)
