package domain

import "time"

// RelationType labels the dominant similarity dimension of an edge.
// These values must match the database column paper_edges.relation_type.
type RelationType string

const (
	RelationSimilarity    RelationType = "similarity"
	RelationSameSubject   RelationType = "same_subject"
	RelationAuthorOverlap RelationType = "author_overlap"
)

// IsValid reports whether r is one of the known relation labels.
func (r RelationType) IsValid() bool {
	switch r {
	case RelationSimilarity, RelationSameSubject, RelationAuthorOverlap:
		return true
	default:
		return false
	}
}

// GraphEdge is a directed, weighted relationship between two papers.
// Edges derived from a pairwise score always come in symmetric pairs.
type GraphEdge struct {
	FromID       string       `json:"from"`
	ToID         string       `json:"to"`
	Weight       float64      `json:"weight"`
	RelationType RelationType `json:"relation"`
	CreatedAt    time.Time    `json:"created_at,omitzero"`
}

// TimeSeriesPoint is a dated scalar observation with an event count.
type TimeSeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Count int       `json:"count"`
}
