package graph

import (
	"github.com/helixir/paper-aggregator/internal/domain"
)

// BuildEdges scores every unordered pair of identifiable records and emits a
// pair of directed edges (A to B and B to A) with identical weight and
// relation for each pair at or above the threshold.
//
// Records without an identifier are skipped, as are pairs that resolve to
// the same identifier. Output order follows input order.
func (s *Scorer) BuildEdges(records []domain.PaperRecord) []domain.GraphEdge {
	type item struct {
		id string
		prepared
	}

	items := make([]item, 0, len(records))
	for _, r := range records {
		id := r.Identifier()
		if id == "" {
			continue
		}
		items = append(items, item{id: id, prepared: s.prepare(r)})
	}

	edges := make([]domain.GraphEdge, 0)
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			a, b := items[i], items[j]
			if a.id == b.id {
				continue
			}

			c := s.components(a.prepared, b.prepared)
			weight := s.combine(c)
			if weight < s.threshold {
				continue
			}

			relation := c.Relation()
			edges = append(edges,
				domain.GraphEdge{FromID: a.id, ToID: b.id, Weight: weight, RelationType: relation},
				domain.GraphEdge{FromID: b.id, ToID: a.id, Weight: weight, RelationType: relation},
			)
		}
	}
	return edges
}
