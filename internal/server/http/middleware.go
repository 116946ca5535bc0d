package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/helixir/paper-aggregator/internal/observability"
)

const (
	headerCorrelationID = "X-Correlation-ID"
	headerTraceID       = "X-Trace-ID"
	headerSpanID        = "X-Span-ID"
)

// correlationIDMiddleware ensures every request has a correlation ID and
// carries trace headers into the request context.
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(headerCorrelationID)
		if correlationID == "" {
			correlationID = middleware.GetReqID(r.Context())
		}
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		w.Header().Set(headerCorrelationID, correlationID)
		ctx := observability.WithRequestID(r.Context(), correlationID)
		if traceID := r.Header.Get(headerTraceID); traceID != "" {
			ctx = observability.WithTraceSpan(ctx, traceID, r.Header.Get(headerSpanID))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// instrumentMiddleware logs each request and records it in the HTTP metrics.
// Routes are labeled by their chi pattern to keep cardinality bounded.
func (s *Server) instrumentMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		elapsed := time.Since(start)

		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(r.Method, route, status, elapsed.Seconds())
		}
		reqLogger := observability.LoggerFromContext(r.Context(), s.logger)
		reqLogger.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed).
			Msg("request served")
	})
}

// jsonContentTypeMiddleware sets Content-Type: application/json for all responses.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
