package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zedfin/arrears/pkg/events"
	pkgkafka "github.com/zedfin/arrears/pkg/kafka"
)

// KafkaEventPublisher implements port.EventPublisher by writing outbox
// entries to Kafka. Only the outbox relay calls it; domain transactions
// never touch the broker directly.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	logger   *slog.Logger
}

// NewKafkaEventPublisher creates a publisher targeting the given producer
// and topic.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish sends the entries' payloads, keyed by aggregate so per-loan
// ordering survives partitioning.
func (p *KafkaEventPublisher) Publish(ctx context.Context, entries ...events.OutboxEntry) error {
	messages := make([]pkgkafka.Message, 0, len(entries))
	for _, entry := range entries {
		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", entry.EventType,
			"aggregate_id", entry.AggregateID,
			"topic", p.topic,
			"payload_size", len(entry.Payload),
		)

		messages = append(messages, pkgkafka.Message{
			Key:   []byte(entry.AggregateID),
			Value: entry.Payload,
			Headers: map[string]string{
				"event_type":     entry.EventType,
				"event_id":       entry.ID,
				"aggregate_type": entry.AggregateType,
				"correlation_id": entry.CorrelationID,
			},
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("publish events to topic %s: %w", p.topic, err)
	}
	return nil
}
