package httpserver

import (
	"time"

	"github.com/helixir/paper-aggregator/internal/aggregator"
	"github.com/helixir/paper-aggregator/internal/analytics"
	"github.com/helixir/paper-aggregator/internal/domain"
	"github.com/helixir/paper-aggregator/internal/graph"
)

// Request bodies.

type graphRequest struct {
	Papers []graphPaperRequest `json:"papers" validate:"required,min=1,max=500,dive"`
}

type graphPaperRequest struct {
	PaperUID string   `json:"paper_uid" validate:"required_without_all=PaperID URL"`
	PaperID  string   `json:"paper_id"`
	URL      string   `json:"url"`
	Title    string   `json:"title" validate:"max=2000"`
	Abstract string   `json:"abstract"`
	Authors  []string `json:"authors" validate:"max=500"`
	Year     int      `json:"year" validate:"gte=0,lte=3000"`
	Venue    string   `json:"venue"`
	Source   string   `json:"source" validate:"omitempty,oneof=scholar_graph work_index citation_registry preprint_archive"`
}

func (p graphPaperRequest) toDomain() domain.PaperRecord {
	return domain.PaperRecord{
		PaperUID: p.PaperUID,
		PaperID:  p.PaperID,
		URL:      p.URL,
		Title:    p.Title,
		Abstract: p.Abstract,
		Authors:  p.Authors,
		Year:     p.Year,
		Venue:    p.Venue,
		Source:   domain.SourceType(p.Source),
	}
}

type confidenceRequest struct {
	Points []confidencePoint `json:"points" validate:"required,min=1,max=10000,dive"`
	Window int               `json:"window" validate:"gte=0,lte=365"`
}

type confidencePoint struct {
	Date  time.Time `json:"date" validate:"required"`
	Value *float64  `json:"value" validate:"required"`
	Count int       `json:"count" validate:"gte=0"`
}

type usageRequest struct {
	Counts []analytics.UsageCount `json:"counts" validate:"required,min=1,max=10000,dive"`
}

// Response bodies.

type paperResponse struct {
	PaperUID string   `json:"paper_uid"`
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	URL      string   `json:"url"`
	Authors  []string `json:"authors"`
	Year     int      `json:"year,omitempty"`
	Venue    string   `json:"venue,omitempty"`
	Source   string   `json:"source"`
}

type sourceResponse struct {
	Source     string `json:"source"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type searchResponse struct {
	SearchID   string           `json:"search_id"`
	Query      string           `json:"query"`
	Limit      int              `json:"limit"`
	Papers     []paperResponse  `json:"papers"`
	Sources    []sourceResponse `json:"sources"`
	RawCount   int              `json:"raw_count"`
	Duplicates int              `json:"duplicates"`
	Persisted  bool             `json:"persisted"`
	DurationMS int64            `json:"duration_ms"`
}

type edgeResponse struct {
	From      string     `json:"from"`
	To        string     `json:"to"`
	Weight    float64    `json:"weight"`
	Relation  string     `json:"relation"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type graphResponse struct {
	GraphID   string         `json:"graph_id"`
	Nodes     []graph.Node   `json:"nodes"`
	Edges     []edgeResponse `json:"edges"`
	Persisted bool           `json:"persisted"`
}

type neighborsResponse struct {
	PaperUID string         `json:"paper_uid"`
	Edges    []edgeResponse `json:"edges"`
}

type listPapersResponse struct {
	Papers        []paperResponse `json:"papers"`
	NextPageToken string          `json:"next_page_token,omitempty"`
	TotalCount    int             `json:"total_count"`
}

type usageResponse struct {
	Shares []analytics.UsageShare `json:"shares"`
}

// Converter functions

func paperToResponse(p domain.PaperRecord) paperResponse {
	authors := p.Authors
	if authors == nil {
		authors = []string{}
	}
	return paperResponse{
		PaperUID: p.PaperUID,
		Title:    p.Title,
		Abstract: p.Abstract,
		URL:      p.URL,
		Authors:  authors,
		Year:     p.Year,
		Venue:    p.Venue,
		Source:   string(p.Source),
	}
}

func searchResultToResponse(r *aggregator.SearchResult) searchResponse {
	papers := make([]paperResponse, len(r.Papers))
	for i, p := range r.Papers {
		papers[i] = paperToResponse(p)
	}

	sources := make([]sourceResponse, len(r.Sources))
	for i, o := range r.Sources {
		sources[i] = sourceResponse{
			Source:     string(o.Source),
			Name:       o.Source.DisplayName(),
			Count:      o.Count,
			Error:      o.Error,
			DurationMS: o.Duration.Milliseconds(),
		}
	}

	return searchResponse{
		SearchID:   r.SearchID,
		Query:      r.Query,
		Limit:      r.Limit,
		Papers:     papers,
		Sources:    sources,
		RawCount:   r.RawCount,
		Duplicates: r.Duplicates,
		Persisted:  r.Persisted,
		DurationMS: r.Duration.Milliseconds(),
	}
}

func edgesToResponse(edges []domain.GraphEdge) []edgeResponse {
	out := make([]edgeResponse, len(edges))
	for i, e := range edges {
		out[i] = edgeResponse{
			From:     e.FromID,
			To:       e.ToID,
			Weight:   e.Weight,
			Relation: string(e.RelationType),
		}
		if !e.CreatedAt.IsZero() {
			createdAt := e.CreatedAt
			out[i].CreatedAt = &createdAt
		}
	}
	return out
}
