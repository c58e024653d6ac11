// Package events announces placed orders to whatever fulfils them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/safar/maison-store/internal/models"
	log "github.com/sirupsen/logrus"
)

const EventTypeOrderPlaced = "order.placed"

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order models.Order) error
}

// OrderPlaced is the message body. Amounts are decimal strings.
type OrderPlaced struct {
	Type       string       `json:"type"`
	OccurredAt time.Time    `json:"occurred_at"`
	Order      models.Order `json:"order"`
}

type Noop struct{}

func (Noop) PublishOrderPlaced(context.Context, models.Order) error { return nil }

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *log.Entry
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return newKafkaPublisher(producer, topic), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   log.WithField("component", "order-events"),
	}
}

// PublishOrderPlaced sends the order keyed by its id so every event for one
// order lands on the same partition.
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, order models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(OrderPlaced{
		Type:       EventTypeOrderPlaced,
		OccurredAt: time.Now().UTC(),
		Order:      order,
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(order.ID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeOrderPlaced)},
		},
	})
	if err != nil {
		return fmt.Errorf("send order event %s: %w", order.ID, err)
	}

	p.logger.WithFields(log.Fields{
		"order_id":  order.ID,
		"topic":     p.topic,
		"partition": partition,
		"offset":    offset,
	}).Debug("order event sent")

	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = Noop{}
)
