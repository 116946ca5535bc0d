package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	t.Run("stores and retrieves request ID", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-123")
		assert.Equal(t, "req-123", RequestIDFromContext(ctx))
	})

	t.Run("returns empty string when not set", func(t *testing.T) {
		assert.Equal(t, "", RequestIDFromContext(context.Background()))
	})
}

func TestSearchIDContext(t *testing.T) {
	ctx := WithSearchIDContext(context.Background(), "search-9")
	assert.Equal(t, "search-9", SearchIDFromContext(ctx))
	assert.Equal(t, "", SearchIDFromContext(context.Background()))
}

func TestTraceSpanContext(t *testing.T) {
	t.Run("stores and retrieves trace and span IDs", func(t *testing.T) {
		ctx := WithTraceSpan(context.Background(), "trace-abc", "span-xyz")

		traceID, spanID := TraceSpanFromContext(ctx)
		assert.Equal(t, "trace-abc", traceID)
		assert.Equal(t, "span-xyz", spanID)
	})

	t.Run("returns empty strings when not set", func(t *testing.T) {
		traceID, spanID := TraceSpanFromContext(context.Background())
		assert.Empty(t, traceID)
		assert.Empty(t, spanID)
	})
}

func TestContextKeysDoNotCollideWithStrings(t *testing.T) {
	//nolint:staticcheck // deliberately using a bare string key
	ctx := context.WithValue(context.Background(), "request_id", "plain")
	assert.Equal(t, "", RequestIDFromContext(ctx))
}

func TestLoggerFromContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithSearchIDContext(ctx, "search-1")

	var buf bytes.Buffer
	logger := LoggerFromContext(ctx, zerolog.New(&buf))
	logger.Info().Msg("hello")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "search-1", entry["search_id"])
	assert.NotContains(t, entry, "trace_id")
}
