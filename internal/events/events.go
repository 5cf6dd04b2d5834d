package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shadowsync/internal/logger"

	"github.com/segmentio/kafka-go"
)

const Topic = "sync-events"

type Type string

const (
	TypeProductCreated   Type = "product.created"
	TypeProductUpdated   Type = "product.updated"
	TypeProductArchived  Type = "product.archived"
	TypeInventoryUpdated Type = "inventory.updated"
	TypeOrderRecorded    Type = "order.recorded"
	TypeSyncCompleted    Type = "sync.completed"
)

// Event is the outcome record published after a shadow-store write. Consumers
// (the analytics worker) treat it as informational; the store, not the event
// stream, is the system of record.
type Event struct {
	Type              Type                   `json:"type"`
	Source            string                 `json:"source"`
	ExternalProductID string                 `json:"external_product_id,omitempty"`
	BatchID           string                 `json:"batch_id,omitempty"`
	Data              map[string]interface{} `json:"data,omitempty"`
	Timestamp         time.Time              `json:"timestamp"`
}

type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers string, logger *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ExternalProductID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Published event %s for product %s", event.Type, event.ExternalProductID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
