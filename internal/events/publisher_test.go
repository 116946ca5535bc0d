package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-aggregator/internal/config"
	"github.com/helixir/paper-aggregator/internal/domain"
)

// MockWriter is a mock implementation of messageWriter.
type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

func testEvent(t *testing.T) *domain.Event {
	t.Helper()
	event, err := NewEmitter("").Emit(EmitParams{
		AggregateID: "search-1",
		EventType:   domain.EventTypePapersSearched,
		Payload:     domain.PapersSearchedPayload{SearchID: "search-1", Query: "graph neural networks", PaperCount: 2},
	})
	require.NoError(t, err)
	return event
}

func TestKafkaPublisher_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("writes keyed envelope", func(t *testing.T) {
		writer := new(MockWriter)
		event := testEvent(t)

		var written []kafka.Message
		writer.On("WriteMessages", ctx, mock.Anything).
			Run(func(args mock.Arguments) {
				written = args.Get(1).([]kafka.Message)
			}).
			Return(nil)

		p := newKafkaPublisher(writer, "paper-aggregator.events", zerolog.Nop())
		require.NoError(t, p.Publish(ctx, event))
		writer.AssertExpectations(t)

		require.Len(t, written, 1)
		msg := written[0]
		assert.Equal(t, "search-1", string(msg.Key))
		assert.Equal(t, []kafka.Header{
			{Key: "event_type", Value: []byte(domain.EventTypePapersSearched)},
			{Key: "event_id", Value: []byte(event.EventID)},
		}, msg.Headers)

		var env Envelope
		require.NoError(t, json.Unmarshal(msg.Value, &env))
		assert.Equal(t, event.EventID, env.EventID)
		assert.Equal(t, domain.EventTypePapersSearched, env.EventType)
		assert.Equal(t, DefaultServiceName, env.Metadata[MetadataSource])

		var payload domain.PapersSearchedPayload
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		assert.Equal(t, "graph neural networks", payload.Query)
		assert.Equal(t, 2, payload.PaperCount)
	})

	t.Run("wraps writer errors", func(t *testing.T) {
		writer := new(MockWriter)
		writer.On("WriteMessages", ctx, mock.Anything).Return(errors.New("leader not available"))

		p := newKafkaPublisher(writer, "topic", zerolog.Nop())
		err := p.Publish(ctx, testEvent(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "write papers.searched event")
		assert.Contains(t, err.Error(), "leader not available")
	})

	t.Run("rejects nil event", func(t *testing.T) {
		p := newKafkaPublisher(new(MockWriter), "topic", zerolog.Nop())
		assert.Error(t, p.Publish(ctx, nil))
	})

	t.Run("empty payload becomes null", func(t *testing.T) {
		msg, err := toMessage(&domain.Event{EventID: "e", EventType: "t", AggregateID: "a"})
		require.NoError(t, err)
		assert.Contains(t, string(msg.Value), `"payload":null`)
	})
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := new(MockWriter)
	writer.On("Close").Return(nil)

	p := newKafkaPublisher(writer, "topic", zerolog.Nop())
	require.NoError(t, p.Close())
	writer.AssertExpectations(t)
}

func TestNewPublisher(t *testing.T) {
	t.Run("disabled kafka yields noop", func(t *testing.T) {
		p := NewPublisher(config.KafkaConfig{Enabled: false}, zerolog.Nop())
		assert.IsType(t, NoopPublisher{}, p)
		assert.NoError(t, p.Publish(context.Background(), &domain.Event{}))
		assert.NoError(t, p.Close())
	})

	t.Run("enabled kafka yields kafka publisher", func(t *testing.T) {
		p := NewPublisher(config.KafkaConfig{
			Enabled: true,
			Brokers: []string{"localhost:9092"},
			Topic:   "paper-aggregator.events",
		}, zerolog.Nop())
		kp, ok := p.(*KafkaPublisher)
		require.True(t, ok)
		assert.Equal(t, "paper-aggregator.events", kp.topic)
	})
}
