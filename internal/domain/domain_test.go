package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceType_IsValid(t *testing.T) {
	for _, s := range AllSourceTypes() {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, SourceType("scopus").IsValid())
	assert.False(t, SourceType("").IsValid())
}

func TestSourceType_DisplayName(t *testing.T) {
	assert.Equal(t, "ScholarGraph", SourceTypeScholarGraph.DisplayName())
	assert.Equal(t, "WorkIndex", SourceTypeWorkIndex.DisplayName())
	assert.Equal(t, "CitationRegistry", SourceTypeCitationRegistry.DisplayName())
	assert.Equal(t, "PreprintArchive", SourceTypePreprintArchive.DisplayName())
	assert.Equal(t, "other", SourceType("other").DisplayName())
}

func TestDefaultTrustTable(t *testing.T) {
	table := DefaultTrustTable()

	assert.Equal(t, 1.0, table.Weight(SourceTypeScholarGraph))
	assert.Equal(t, 0.9, table.Weight(SourceTypeWorkIndex))
	assert.Equal(t, 0.75, table.Weight(SourceTypeCitationRegistry))
	assert.Equal(t, 0.7, table.Weight(SourceTypePreprintArchive))
	assert.Equal(t, 0.0, table.Weight(SourceType("unknown")))
}

func TestPaperRecord_Identifier(t *testing.T) {
	tests := []struct {
		name   string
		paper  PaperRecord
		expect string
	}{
		{"uid wins", PaperRecord{PaperUID: "u", PaperID: "p", URL: "https://x"}, "u"},
		{"paper id next", PaperRecord{PaperID: "p", URL: "https://x"}, "p"},
		{"url last", PaperRecord{URL: "https://x"}, "https://x"},
		{"none", PaperRecord{Title: "t"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.paper.Identifier())
		})
	}
}

func TestPaperRecord_HasAbstract(t *testing.T) {
	assert.False(t, (&PaperRecord{}).HasAbstract())
	assert.False(t, (&PaperRecord{Abstract: AbstractNotAvailable}).HasAbstract())
	assert.True(t, (&PaperRecord{Abstract: "text"}).HasAbstract())
}

func TestRelationType_IsValid(t *testing.T) {
	assert.True(t, RelationSimilarity.IsValid())
	assert.True(t, RelationSameSubject.IsValid())
	assert.True(t, RelationAuthorOverlap.IsValid())
	assert.False(t, RelationType("cites").IsValid())
}

func TestErrors(t *testing.T) {
	t.Run("paper not found unwraps to sentinel", func(t *testing.T) {
		err := fmt.Errorf("lookup: %w", &PaperNotFoundError{PaperUID: "abc"})
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Equal(t, "lookup: paper not found: abc", err.Error())
	})

	t.Run("provider error classifies status", func(t *testing.T) {
		tests := []struct {
			status      int
			rateLimited bool
			unavailable bool
		}{
			{429, true, false},
			{500, false, true},
			{503, false, true},
			{400, false, false},
			{404, false, false},
		}
		for _, tt := range tests {
			err := fmt.Errorf("search: %w", NewProviderError(SourceTypeWorkIndex, tt.status, "x"))
			assert.Equal(t, tt.rateLimited, errors.Is(err, ErrRateLimited), tt.status)
			assert.Equal(t, tt.unavailable, errors.Is(err, ErrProviderUnavailable), tt.status)
		}
	})

	t.Run("provider error message", func(t *testing.T) {
		err := NewProviderError(SourceTypeScholarGraph, 503, "unavailable")

		var provErr *ProviderError
		require.True(t, errors.As(fmt.Errorf("wrap: %w", err), &provErr))
		assert.Equal(t, SourceTypeScholarGraph, provErr.Source)
		assert.Equal(t, "scholar_graph returned status 503: unavailable", err.Error())
	})

	t.Run("validation error", func(t *testing.T) {
		assert.Equal(t, "validation error: q: too short", NewValidationError("q", "too short").Error())
		assert.ErrorIs(t, NewValidationError("q", "too short"), ErrInvalidInput)
	})
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent(EventTypeGraphBuilt, "g-1", GraphBuiltPayload{GraphID: "g-1", Nodes: 3, Edges: 2})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, 1, ev.EventVersion)
	assert.Equal(t, EventTypeGraphBuilt, ev.EventType)
	assert.False(t, ev.CreatedAt.IsZero())

	var payload GraphBuiltPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, 3, payload.Nodes)

	ev.WithMetadata(map[string]string{"request_id": "r"})
	assert.Equal(t, "r", ev.Metadata["request_id"])
}

func TestNewEvent_UnmarshalablePayload(t *testing.T) {
	_, err := NewEvent(EventTypeGraphBuilt, "g", make(chan int))
	assert.Error(t, err)
}
