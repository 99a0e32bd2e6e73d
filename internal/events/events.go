// Package events publishes order lifecycle events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scango/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventType names an order lifecycle step.
type EventType string

const (
	OrderCreated   EventType = "order.created"
	OrderCompleted EventType = "order.completed"
	OrderCancelled EventType = "order.cancelled"
)

// OrderEvent is the message sent for every order status change.
type OrderEvent struct {
	Type       EventType          `json:"type"`
	OrderID    string             `json:"order_id"`
	CartID     string             `json:"cart_id"`
	UserID     string             `json:"user_id"`
	Status     models.OrderStatus `json:"status"`
	Total      decimal.Decimal    `json:"total"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// NewOrderEvent describes order as it is now.
func NewOrderEvent(t EventType, order *models.Order, now time.Time) OrderEvent {
	return OrderEvent{
		Type:       t,
		OrderID:    order.ID,
		CartID:     order.CartID,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      order.TotalPrice,
		OccurredAt: now,
	}
}

// TypeFor returns the event type matching an order status.
func TypeFor(status models.OrderStatus) EventType {
	switch status {
	case models.OrderCompleted:
		return OrderCompleted
	case models.OrderCancelled:
		return OrderCancelled
	default:
		return OrderCreated
	}
}

// Publisher sends order events.
type Publisher interface {
	Publish(ctx context.Context, e OrderEvent) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }

// JSONPublisher is satisfied by the RabbitMQ client.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, v interface{}) error
}

// AMQPPublisher sends events through a RabbitMQ queue.
type AMQPPublisher struct {
	client JSONPublisher
}

// NewAMQPPublisher creates an AMQPPublisher on client.
func NewAMQPPublisher(client JSONPublisher) *AMQPPublisher {
	return &AMQPPublisher{client: client}
}

func (p *AMQPPublisher) Publish(ctx context.Context, e OrderEvent) error {
	if err := p.client.PublishJSON(ctx, e); err != nil {
		return fmt.Errorf("publish %s for order %s: %w", e.Type, e.OrderID, err)
	}
	return nil
}

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher sends events to a Kafka topic keyed by order ID, so all
// events of one order land on the same partition.
type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaWriter builds the writer used by KafkaPublisher.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
	}
}

// NewKafkaPublisher creates a KafkaPublisher on writer.
func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e OrderEvent) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(e.OrderID),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for order %s: %w", e.Type, e.OrderID, err)
	}
	return nil
}

// LogHandler returns a consumer callback that logs received events.
func LogHandler(logger *zap.Logger) func(body []byte) error {
	return func(body []byte) error {
		var e OrderEvent
		if err := json.Unmarshal(body, &e); err != nil {
			return fmt.Errorf("decode order event: %w", err)
		}
		logger.Info("order event received",
			zap.String("type", string(e.Type)),
			zap.String("order_id", e.OrderID),
			zap.String("cart_id", e.CartID),
			zap.String("total", e.Total.StringFixed(2)),
		)
		return nil
	}
}
