package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-aggregator/internal/domain"
	"github.com/helixir/paper-aggregator/internal/repository"
)

type fakeEdgeStore struct {
	upserted  [][]domain.GraphEdge
	neighbors []domain.GraphEdge
	err       error
}

func (f *fakeEdgeStore) UpsertEdges(_ context.Context, edges []domain.GraphEdge) (repository.UpsertResult, error) {
	if f.err != nil {
		return repository.UpsertResult{}, f.err
	}
	f.upserted = append(f.upserted, edges)
	return repository.UpsertResult{Inserted: len(edges)}, nil
}

func (f *fakeEdgeStore) Neighbors(_ context.Context, _ string, _ int) ([]domain.GraphEdge, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.neighbors, nil
}

// relatedPapers share authors, year and most of their text.
func relatedPapers() []domain.PaperRecord {
	return []domain.PaperRecord{
		{
			PaperUID: "uid-a",
			Title:    "Graph neural networks for molecules",
			Abstract: "Message passing networks predict molecular properties",
			Authors:  []string{"Ada Lovelace", "Alan Turing"},
			Year:     2021,
			Source:   domain.SourceTypeScholarGraph,
		},
		{
			PaperUID: "uid-b",
			Title:    "Graph neural networks for proteins",
			Abstract: "Message passing networks predict protein properties",
			Authors:  []string{"Alan Turing", "Ada Lovelace"},
			Year:     2021,
			Source:   domain.SourceTypeWorkIndex,
		},
		{
			PaperUID: "uid-c",
			Title:    "Crop rotation economics",
			Abstract: "Soil yields under changing rainfall",
			Authors:  []string{"Gregor Mendel"},
			Year:     1990,
			Source:   domain.SourceTypeCitationRegistry,
		},
	}
}

func TestBuildGraph(t *testing.T) {
	t.Run("builds symmetric edges and persists them", func(t *testing.T) {
		store := &fakeEdgeStore{}
		publisher := &recordingPublisher{}
		metrics := newTestMetrics()
		svc := NewService(Config{}, &mockSearcher{}, nil, nil, zerolog.Nop(),
			WithEdgeStore(store), WithPublisher(publisher, nil), WithMetrics(metrics))

		result, err := svc.BuildGraph(context.Background(), relatedPapers())
		require.NoError(t, err)

		assert.NotEmpty(t, result.GraphID)
		assert.True(t, result.Persisted)
		assert.Len(t, result.Graph.Nodes, 3)
		require.Len(t, result.Graph.Edges, 2)
		a, b := result.Graph.Edges[0], result.Graph.Edges[1]
		assert.Equal(t, "uid-a", a.FromID)
		assert.Equal(t, "uid-b", a.ToID)
		assert.Equal(t, a.FromID, b.ToID)
		assert.Equal(t, a.ToID, b.FromID)
		assert.Equal(t, a.Weight, b.Weight)
		assert.GreaterOrEqual(t, a.Weight, 0.55)

		require.Len(t, store.upserted, 1)
		assert.Equal(t, result.Graph.Edges, store.upserted[0])

		require.Len(t, publisher.events, 1)
		assert.Equal(t, domain.EventTypeGraphBuilt, publisher.events[0].EventType)
		var payload domain.GraphBuiltPayload
		require.NoError(t, json.Unmarshal(publisher.events[0].Payload, &payload))
		assert.Equal(t, domain.GraphBuiltPayload{GraphID: result.GraphID, Nodes: 3, Edges: 2}, payload)

		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.GraphsBuilt))
		assert.Equal(t, float64(2), testutil.ToFloat64(metrics.GraphEdges))
	})

	t.Run("edge store failure is not fatal", func(t *testing.T) {
		metrics := newTestMetrics()
		svc := NewService(Config{}, &mockSearcher{}, nil, nil, zerolog.Nop(),
			WithEdgeStore(&fakeEdgeStore{err: errors.New("disk full")}), WithMetrics(metrics))

		result, err := svc.BuildGraph(context.Background(), relatedPapers())
		require.NoError(t, err)
		assert.False(t, result.Persisted)
		assert.Len(t, result.Graph.Edges, 2)
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.StoreErrors.WithLabelValues("edges_upsert")))
	})

	t.Run("empty input yields empty graph", func(t *testing.T) {
		svc := NewService(Config{}, &mockSearcher{}, nil, nil, zerolog.Nop())

		result, err := svc.BuildGraph(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, result.Graph.Nodes)
		assert.NotNil(t, result.Graph.Edges)
		assert.Empty(t, result.Graph.Edges)
	})
}

func TestNeighbors(t *testing.T) {
	t.Run("requires an edge store", func(t *testing.T) {
		svc := NewService(Config{}, &mockSearcher{}, nil, nil, zerolog.Nop())
		_, err := svc.Neighbors(context.Background(), "uid-a", 10)
		assert.ErrorIs(t, err, domain.ErrStoreDisabled)
	})

	t.Run("returns stored edges", func(t *testing.T) {
		stored := []domain.GraphEdge{{FromID: "uid-a", ToID: "uid-b", Weight: 0.8, RelationType: domain.RelationSimilarity}}
		svc := NewService(Config{}, &mockSearcher{}, nil, nil, zerolog.Nop(), WithEdgeStore(&fakeEdgeStore{neighbors: stored}))

		edges, err := svc.Neighbors(context.Background(), "uid-a", 10)
		require.NoError(t, err)
		assert.Equal(t, stored, edges)
	})

	t.Run("counts store errors", func(t *testing.T) {
		metrics := newTestMetrics()
		svc := NewService(Config{}, &mockSearcher{}, nil, nil, zerolog.Nop(),
			WithEdgeStore(&fakeEdgeStore{err: errors.New("timeout")}), WithMetrics(metrics))

		_, err := svc.Neighbors(context.Background(), "uid-a", 10)
		require.Error(t, err)
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.StoreErrors.WithLabelValues("edges_neighbors")))
	})
}
