package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggingConfig(t *testing.T) {
	cfg := DefaultLoggingConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.False(t, cfg.AddSource)
}

func TestNewLogger(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	t.Run("creates logger with default config", func(t *testing.T) {
		logger := NewLogger(DefaultLoggingConfig())
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("creates logger with debug level", func(t *testing.T) {
		logger := NewLogger(LoggingConfig{Level: "debug", Format: "json", Output: "stderr"})
		assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
	})

	t.Run("writes json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggingConfig{Level: "info", Format: "json"}, &buf)
		logger.Info().Str("source", "work_index").Msg("hello")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hello", entry["message"])
		assert.Equal(t, "work_index", entry["source"])
		assert.Contains(t, entry, "time")
	})

	t.Run("filters below level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)
		logger.Info().Msg("dropped")
		assert.Empty(t, buf.String())
	})

	t.Run("console format is not json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggingConfig{Level: "info", Format: "console"}, &buf)
		logger.Info().Msg("pretty line")

		assert.Contains(t, buf.String(), "pretty line")
		assert.False(t, json.Valid(buf.Bytes()))
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestWithSearchContext(t *testing.T) {
	var buf bytes.Buffer
	enriched := WithSearchContext(zerolog.New(&buf), "graph neural networks", "scholar_graph")
	enriched.Info().Msg("search started")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "graph neural networks", entry["query"])
	assert.Equal(t, "scholar_graph", entry["source"])

	t.Run("omits empty source", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithSearchContext(zerolog.New(&buf), "q", "")
		logger.Info().Msg("x")
		assert.NotContains(t, decodeEntry(t, &buf), "source")
	})
}

func TestWithPaperContext(t *testing.T) {
	var buf bytes.Buffer
	logger := WithPaperContext(zerolog.New(&buf), "abc123", "work_index")
	logger.Info().Msg("paper stored")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "abc123", entry["paper_uid"])
	assert.Equal(t, "work_index", entry["source"])
}

func TestLoggerContextChaining(t *testing.T) {
	var buf bytes.Buffer
	enriched := WithSearchID(zerolog.New(&buf), "search-1")
	enriched = WithSearchContext(enriched, "neural networks", "work_index")
	enriched = WithTraceContext(enriched, "trace-1", "span-1")
	enriched.Info().Msg("chained context")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "search-1", entry["search_id"])
	assert.Equal(t, "neural networks", entry["query"])
	assert.Equal(t, "work_index", entry["source"])
	assert.Equal(t, "trace-1", entry["trace_id"])
	assert.Equal(t, "span-1", entry["span_id"])
}
