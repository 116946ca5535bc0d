package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event type constants for pipeline events.
const (
	EventTypePapersSearched = "papers.searched"
	EventTypeGraphBuilt     = "graph.built"
)

// Event is a pipeline notification published to the event bus.
type Event struct {
	EventID      string
	EventVersion int
	EventType    string
	AggregateID  string
	Payload      []byte
	Metadata     map[string]string
	CreatedAt    time.Time
}

// NewEvent creates a new event with the given parameters.
// The payload is JSON-serialized automatically.
func NewEvent(eventType, aggregateID string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		EventID:      uuid.New().String(),
		EventVersion: 1,
		EventType:    eventType,
		AggregateID:  aggregateID,
		Payload:      payloadBytes,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// WithMetadata sets the metadata on the event.
func (e *Event) WithMetadata(metadata map[string]string) *Event {
	e.Metadata = metadata
	return e
}

// SourceOutcome summarizes one provider's contribution to a search.
type SourceOutcome struct {
	Source   SourceType    `json:"source"`
	Count    int           `json:"count"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// PapersSearchedPayload is the payload for papers.searched events.
type PapersSearchedPayload struct {
	SearchID   string          `json:"search_id"`
	Query      string          `json:"query"`
	Limit      int             `json:"limit"`
	RawCount   int             `json:"raw_count"`
	PaperCount int             `json:"paper_count"`
	PaperUIDs  []string        `json:"paper_uids"`
	Sources    []SourceOutcome `json:"sources"`
	Duration   time.Duration   `json:"duration_ns"`
}

// GraphBuiltPayload is the payload for graph.built events.
type GraphBuiltPayload struct {
	GraphID string `json:"graph_id"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
}
