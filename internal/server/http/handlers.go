package httpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/helixir/paper-aggregator/internal/analytics"
	"github.com/helixir/paper-aggregator/internal/domain"
	"github.com/helixir/paper-aggregator/internal/repository"
)

// Pagination and request limits.
const (
	defaultPageSize    = 50
	maxPageSize        = 100
	maxQueryLength     = 1000
	maxRequestBodySize = 1 << 20 // 1 MB
)

// searchPapers handles GET /api/v1/papers/search?q=&limit=.
// Queries too short to search yield 200 with an empty list.
func (s *Server) searchPapers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if len(query) > maxQueryLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("q must be at most %d characters", maxQueryLength))
		return
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	result, err := s.service.Search(r.Context(), query, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResultToResponse(result))
}

// buildGraph handles POST /api/v1/graph.
func (s *Server) buildGraph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	papers := make([]domain.PaperRecord, len(req.Papers))
	for i, p := range req.Papers {
		papers[i] = p.toDomain()
	}

	result, err := s.service.BuildGraph(r.Context(), papers)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, graphResponse{
		GraphID:   result.GraphID,
		Nodes:     result.Graph.Nodes,
		Edges:     edgesToResponse(result.Graph.Edges),
		Persisted: result.Persisted,
	})
}

// getNeighbors handles GET /api/v1/papers/{paperUID}/neighbors.
func (s *Server) getNeighbors(w http.ResponseWriter, r *http.Request) {
	paperUID := chi.URLParam(r, "paperUID")
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	edges, err := s.service.Neighbors(r.Context(), paperUID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, neighborsResponse{
		PaperUID: paperUID,
		Edges:    edgesToResponse(edges),
	})
}

// getPaper handles GET /api/v1/papers/{paperUID}.
func (s *Server) getPaper(w http.ResponseWriter, r *http.Request) {
	if s.papers == nil {
		writeDomainError(w, domain.ErrStoreDisabled)
		return
	}

	paper, err := s.papers.GetByUID(r.Context(), chi.URLParam(r, "paperUID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paperToResponse(*paper))
}

// listPapers handles GET /api/v1/papers?source=&year=&page_size=&page_token=.
func (s *Server) listPapers(w http.ResponseWriter, r *http.Request) {
	if s.papers == nil {
		writeDomainError(w, domain.ErrStoreDisabled)
		return
	}

	limit, offset := parsePaginationParams(r)
	filter := repository.PaperFilter{Limit: limit, Offset: offset}

	if sourceParam := r.URL.Query().Get("source"); sourceParam != "" {
		source := domain.SourceType(sourceParam)
		filter.Source = &source
	}
	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil || year < 0 {
			writeError(w, http.StatusBadRequest, "year must be a non-negative integer")
			return
		}
		filter.Year = &year
	}

	papers, totalCount, err := s.papers.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	responses := make([]paperResponse, len(papers))
	for i, p := range papers {
		responses[i] = paperToResponse(p)
	}

	writeJSON(w, http.StatusOK, listPapersResponse{
		Papers:        responses,
		NextPageToken: encodeHTTPPageToken(offset, limit, int(totalCount)),
		TotalCount:    int(totalCount),
	})
}

// confidenceSummary handles POST /api/v1/analytics/confidence.
func (s *Server) confidenceSummary(w http.ResponseWriter, r *http.Request) {
	var req confidenceRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	points := make([]domain.TimeSeriesPoint, len(req.Points))
	for i, p := range req.Points {
		points[i] = domain.TimeSeriesPoint{Date: p.Date, Value: *p.Value, Count: p.Count}
	}

	writeJSON(w, http.StatusOK, analytics.ConfidenceSummary(points, req.Window))
}

// usageShares handles POST /api/v1/analytics/usage.
func (s *Server) usageShares(w http.ResponseWriter, r *http.Request) {
	var req usageRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, usageResponse{Shares: analytics.UsageShares(req.Counts)})
}

// decodeBody reads a size-limited JSON body into dst and validates it.
// On failure it writes a 400 response and returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage renders validator errors without echoing field values.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %q", field, fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// writeDomainError maps domain errors to HTTP status codes. Internal error
// details are not leaked to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrStoreDisabled):
		writeError(w, http.StatusServiceUnavailable, "persistence is disabled")
	case errors.Is(err, domain.ErrSearchCancelled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusRequestTimeout, "operation cancelled")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseLimit reads the optional limit query parameter. Zero or absent means
// the service default.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}

// parsePaginationParams extracts page_size and page_token from query parameters.
// It applies default and maximum bounds to the page size.
func parsePaginationParams(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if pageSizeStr := r.URL.Query().Get("page_size"); pageSizeStr != "" {
		if parsed, err := strconv.Atoi(pageSizeStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if pageToken := r.URL.Query().Get("page_token"); pageToken != "" {
		decoded, err := base64.StdEncoding.DecodeString(pageToken)
		if err == nil {
			if parsed, parseErr := strconv.Atoi(string(decoded)); parseErr == nil && parsed > 0 {
				offset = parsed
			}
		}
	}

	return limit, offset
}

// encodeHTTPPageToken encodes the next offset as a base64 page token.
// Returns an empty string if there are no more results.
func encodeHTTPPageToken(offset, limit, totalCount int) string {
	nextOffset := offset + limit
	if nextOffset < totalCount {
		return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(nextOffset)))
	}
	return ""
}
