package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/swe-alert-service/internal/domain"
)

// Publisher produces check results to a Kafka topic.
// It implements pipeline.Notifier.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the alert topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

func (p *Publisher) Name() string { return "kafka" }

// Notify publishes the full check result. Messages are keyed by station so
// results for one station stay ordered within a partition.
func (p *Publisher) Notify(ctx context.Context, res domain.CheckResult) error {
	msg, err := serializeToMessage(res)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish check result: %w", err)
	}
	p.logger.Debug("check result published", "topic", p.writer.Topic, "id", res.ID, "station", res.Station)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a CheckResult into a Kafka message.
func serializeToMessage(res domain.CheckResult) (kafkago.Message, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize check result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(res.Station),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert", Value: []byte(strconv.FormatBool(res.Decision.Alert))},
			{Key: "checked_at", Value: []byte(res.CheckedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
