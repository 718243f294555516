package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/internal/config"
	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// MessageBus publishes interaction records and model lifecycle events to
// Kafka. Both streams feed downstream analytics; the service itself never
// consumes them.
type MessageBus struct {
	interactions *kafka.Writer
	modelEvents  *kafka.Writer
	logger       *logrus.Logger
}

func NewMessageBus(cfg *config.Config, logger *logrus.Logger) *MessageBus {
	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		}
	}

	return &MessageBus{
		interactions: newWriter(cfg.Kafka.Topics.UserInteractions),
		modelEvents:  newWriter(cfg.Kafka.Topics.ModelEvents),
		logger:       logger,
	}
}

// PublishInteraction emits a recorded interaction, keyed by user so one
// user's events stay ordered within a partition.
func (b *MessageBus) PublishInteraction(ctx context.Context, event models.InteractionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal interaction event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := b.interactions.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish interaction event: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"user_id": event.UserID,
		"item_id": event.ItemID,
		"type":    event.Type,
	}).Debug("Interaction event published")
	return nil
}

// PublishModelEvent emits a retrain lifecycle event, keyed by tenant.
func (b *MessageBus) PublishModelEvent(ctx context.Context, tenantKey, eventType string, fields map[string]interface{}) error {
	event := map[string]interface{}{
		"tenant":    tenantKey,
		"event":     eventType,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		event[k] = v
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal model event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(tenantKey),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	if err := b.modelEvents.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish model event: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"tenant": tenantKey,
		"event":  eventType,
	}).Debug("Model event published")
	return nil
}

func (b *MessageBus) Close() error {
	var errs []error
	if err := b.interactions.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.modelEvents.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing kafka writers: %v", errs)
	}
	return nil
}
