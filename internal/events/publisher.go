package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/helixir/paper-aggregator/internal/config"
	"github.com/helixir/paper-aggregator/internal/domain"
)

// Publisher delivers events to the event bus.
type Publisher interface {
	Publish(ctx context.Context, event *domain.Event) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope is the wire format of a published event.
type Envelope struct {
	EventID      string            `json:"event_id"`
	EventType    string            `json:"event_type"`
	EventVersion int               `json:"event_version"`
	AggregateID  string            `json:"aggregate_id"`
	Payload      json.RawMessage   `json:"payload"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// KafkaPublisher writes events to a single Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher backed by a kafka-go Writer.
func NewKafkaPublisher(cfg config.KafkaConfig, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return newKafkaPublisher(writer, cfg.Topic, logger)
}

func newKafkaPublisher(writer messageWriter, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
		logger: logger.With().Str("component", "event_publisher").Str("topic", topic).Logger(),
	}
}

// Publish serializes event into an Envelope and writes it synchronously.
func (p *KafkaPublisher) Publish(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return fmt.Errorf("event is required")
	}

	msg, err := toMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", event.EventType, err)
	}

	p.logger.Debug().
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("aggregate_id", event.AggregateID).
		Msg("event published")

	return nil
}

// Close flushes pending writes and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info().Msg("closing event publisher")
	return p.writer.Close()
}

func toMessage(event *domain.Event) (kafka.Message, error) {
	payload := json.RawMessage(event.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}

	value, err := json.Marshal(Envelope{
		EventID:      event.EventID,
		EventType:    event.EventType,
		EventVersion: event.EventVersion,
		AggregateID:  event.AggregateID,
		Payload:      payload,
		Metadata:     event.Metadata,
		CreatedAt:    event.CreatedAt,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal envelope: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
		Time: event.CreatedAt,
	}, nil
}

// NoopPublisher discards events. It is used when Kafka is disabled.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, *domain.Event) error { return nil }

// Close implements Publisher.
func (NoopPublisher) Close() error { return nil }

// NewPublisher returns a KafkaPublisher when Kafka is enabled and a NoopPublisher otherwise.
func NewPublisher(cfg config.KafkaConfig, logger zerolog.Logger) Publisher {
	if !cfg.Enabled {
		return NoopPublisher{}
	}
	return NewKafkaPublisher(cfg, logger)
}

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = NoopPublisher{}
)
