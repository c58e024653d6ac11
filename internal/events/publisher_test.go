package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/safar/maison-store/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() models.Order {
	return models.Order{
		ID:            "ord_1772366400000",
		Status:        models.OrderStatusProcessing,
		Total:         decimal.RequireFromString("339.5"),
		PaymentMethod: models.PaymentMethodPayPal,
		Items: []models.CartItem{
			{Product: models.Product{ID: 6, Name: "SILK SATIN TIE", Price: models.PriceFromInt(295)}, Quantity: 1},
		},
	}
}

func TestKafkaPublisher_PublishOrderPlaced(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event OrderPlaced
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Type != EventTypeOrderPlaced {
			return fmt.Errorf("unexpected type %q", event.Type)
		}
		if event.Order.ID != "ord_1772366400000" {
			return fmt.Errorf("unexpected order id %q", event.Order.ID)
		}
		if !event.Order.Total.Equal(decimal.RequireFromString("339.5")) {
			return fmt.Errorf("unexpected total %s", event.Order.Total)
		}
		return nil
	})

	p := newKafkaPublisher(producer, "maison.orders")
	require.NoError(t, p.PublishOrderPlaced(context.Background(), sampleOrder()))
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newKafkaPublisher(producer, "maison.orders")
	err := p.PublishOrderPlaced(context.Background(), sampleOrder())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_CanceledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newKafkaPublisher(producer, "maison.orders")
	assert.ErrorIs(t, p.PublishOrderPlaced(ctx, sampleOrder()), context.Canceled)
	require.NoError(t, p.Close())
}
