package events

import (
	"fmt"

	"github.com/helixir/paper-aggregator/internal/domain"
)

// DefaultServiceName is stamped into event metadata when none is configured.
const DefaultServiceName = "paper-aggregator"

// Metadata keys attached to every event.
const (
	MetadataSource        = "source"
	MetadataCorrelationID = "correlation_id"
	MetadataTraceID       = "trace_id"
)

// EmitParams contains the parameters for emitting an event.
type EmitParams struct {
	// AggregateID is the search id or graph id the event belongs to.
	AggregateID string
	// EventType is one of the domain.EventType constants.
	EventType string
	// Payload is JSON-serialized into the event.
	Payload interface{}
	// CorrelationID for request tracing (optional).
	CorrelationID string
	// TraceID for distributed tracing (optional).
	TraceID string
}

// Emitter creates domain events enriched with service context.
type Emitter struct {
	serviceName string
}

// NewEmitter creates a new Emitter. An empty name selects DefaultServiceName.
func NewEmitter(serviceName string) *Emitter {
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	return &Emitter{serviceName: serviceName}
}

// Emit builds an event from params.
func (e *Emitter) Emit(params EmitParams) (*domain.Event, error) {
	if params.AggregateID == "" {
		return nil, fmt.Errorf("aggregate_id is required")
	}
	if params.EventType == "" {
		return nil, fmt.Errorf("event_type is required")
	}

	event, err := domain.NewEvent(params.EventType, params.AggregateID, params.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	metadata := map[string]string{MetadataSource: e.serviceName}
	if params.CorrelationID != "" {
		metadata[MetadataCorrelationID] = params.CorrelationID
	}
	if params.TraceID != "" {
		metadata[MetadataTraceID] = params.TraceID
	}

	return event.WithMetadata(metadata), nil
}
