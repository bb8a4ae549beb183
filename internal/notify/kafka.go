package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/PratikDhanave/trapwatch-service/internal/escalation"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaNotifier publishes alerts to a topic keyed by contact, leaving
// delivery to whichever consumer owns that jurisdiction.
type KafkaNotifier struct {
	writer messageWriter
	logger *slog.Logger
}

// NewKafkaNotifier creates a producer for the alert topic.
func NewKafkaNotifier(brokers []string, topic string, logger *slog.Logger) *KafkaNotifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaNotifier{writer: w, logger: logger}
}

func (n *KafkaNotifier) Notify(ctx context.Context, contact string, alert escalation.Alert) error {
	msg, err := serializeToMessage(contact, alert)
	if err != nil {
		return err
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	n.logger.Debug("kafka alert published", "contact", contact, "alert_id", alert.ID)
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// serializeToMessage marshals an alert into a Kafka message.
func serializeToMessage(contact string, alert escalation.Alert) (kafkago.Message, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(contact),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_id", Value: []byte(alert.ID)},
			{Key: "contact", Value: []byte(contact)},
			{Key: "raised_at", Value: []byte(alert.RaisedAt.Format(time.RFC3339))},
		},
	}, nil
}
