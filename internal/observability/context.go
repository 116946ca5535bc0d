package observability

import (
	"context"

	"github.com/rs/zerolog"
)

// Context keys for observability data.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	searchIDKey  contextKey = "search_id"
	traceIDKey   contextKey = "trace_id"
	spanIDKey    contextKey = "span_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithSearchIDContext adds an aggregated search ID to the context.
func WithSearchIDContext(ctx context.Context, searchID string) context.Context {
	return context.WithValue(ctx, searchIDKey, searchID)
}

// SearchIDFromContext retrieves the search ID from context.
func SearchIDFromContext(ctx context.Context) string {
	return stringValue(ctx, searchIDKey)
}

// WithTraceSpan adds trace and span IDs to the context.
func WithTraceSpan(ctx context.Context, traceID, spanID string) context.Context {
	ctx = context.WithValue(ctx, traceIDKey, traceID)
	ctx = context.WithValue(ctx, spanIDKey, spanID)
	return ctx
}

// TraceSpanFromContext retrieves trace and span IDs from context.
// Returns empty strings if not present.
func TraceSpanFromContext(ctx context.Context) (traceID, spanID string) {
	return stringValue(ctx, traceIDKey), stringValue(ctx, spanIDKey)
}

// LoggerFromContext returns logger enriched with whichever request, search
// and trace identifiers ctx carries.
func LoggerFromContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	lc := logger.With()
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	if id := SearchIDFromContext(ctx); id != "" {
		lc = lc.Str("search_id", id)
	}
	if traceID, spanID := TraceSpanFromContext(ctx); traceID != "" {
		lc = lc.Str("trace_id", traceID).Str("span_id", spanID)
	}
	return lc.Logger()
}

func stringValue(ctx context.Context, key contextKey) string {
	if v := ctx.Value(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
