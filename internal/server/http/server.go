// Package httpserver provides the HTTP REST API of the paper aggregator.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-aggregator/internal/aggregator"
	"github.com/helixir/paper-aggregator/internal/database"
	"github.com/helixir/paper-aggregator/internal/domain"
	"github.com/helixir/paper-aggregator/internal/observability"
	"github.com/helixir/paper-aggregator/internal/repository"
)

// PaperService is the slice of the aggregator used by the handlers.
type PaperService interface {
	Search(ctx context.Context, query string, limit int) (*aggregator.SearchResult, error)
	BuildGraph(ctx context.Context, papers []domain.PaperRecord) (*aggregator.GraphResult, error)
	Neighbors(ctx context.Context, paperUID string, limit int) ([]domain.GraphEdge, error)
}

// HealthChecker reports database health. *database.DB implements it.
type HealthChecker interface {
	Health(ctx context.Context) database.HealthStatus
}

var (
	_ PaperService  = (*aggregator.Service)(nil)
	_ HealthChecker = (*database.DB)(nil)
)

// Server is the HTTP REST API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	service    PaperService
	papers     repository.PaperRepository
	health     HealthChecker
	metrics    *observability.Metrics
	validate   *validator.Validate
	logger     zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Deps are the optional collaborators of a Server. A nil Papers or Health
// means the database is disabled: paper listing answers 503 and readiness
// only reflects the process itself.
type Deps struct {
	Papers  repository.PaperRepository
	Health  HealthChecker
	Metrics *observability.Metrics
}

// NewServer creates a new HTTP server backed by service.
func NewServer(cfg Config, service PaperService, deps Deps, logger zerolog.Logger) *Server {
	s := &Server{
		service:  service,
		papers:   deps.Papers,
		health:   deps.Health,
		metrics:  deps.Metrics,
		validate: newValidator(),
		logger:   logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(s.instrumentMiddleware)
	r.Use(jsonContentTypeMiddleware)

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/papers", s.listPapers)
		r.Get("/papers/search", s.searchPapers)
		r.Get("/papers/{paperUID}", s.getPaper)
		r.Get("/papers/{paperUID}/neighbors", s.getNeighbors)
		r.Post("/graph", s.buildGraph)
		r.Post("/analytics/confidence", s.confidenceSummary)
		r.Post("/analytics/usage", s.usageShares)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns liveness. It never touches the database.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler checks the database when one is configured.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "database": "disabled"})
		return
	}

	health := s.health.Health(r.Context())
	if !health.Healthy() {
		body := map[string]string{
			"status":   "not_ready",
			"database": health.Status,
		}
		if health.Error != "" {
			body["error"] = health.Error
		}
		if len(health.MissingTables) > 0 {
			body["missing_tables"] = strings.Join(health.MissingTables, ",")
		}
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": health.Status,
	})
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
