package graph

import "github.com/helixir/paper-aggregator/internal/domain"

// NodeTypePaper is the only node type currently emitted.
const NodeTypePaper = "paper"

// Node is a vertex in a rendered paper graph.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// Graph is the node and edge view handed to clients.
type Graph struct {
	Nodes []Node             `json:"nodes"`
	Edges []domain.GraphEdge `json:"edges"`
}

// Build scores records and returns the resulting graph view.
func (s *Scorer) Build(records []domain.PaperRecord) Graph {
	return View(records, s.BuildEdges(records))
}

// View assembles nodes for every identifiable record and every edge endpoint.
// Labels are record titles, or the identifier when the title is unknown.
func View(records []domain.PaperRecord, edges []domain.GraphEdge) Graph {
	labels := make(map[string]string, len(records))
	nodes := make([]Node, 0, len(records))

	add := func(id, title string) {
		if id == "" {
			return
		}
		if _, ok := labels[id]; ok {
			if labels[id] == id && title != "" {
				labels[id] = title
			}
			return
		}
		label := title
		if label == "" {
			label = id
		}
		labels[id] = label
		nodes = append(nodes, Node{ID: id, Type: NodeTypePaper})
	}

	for _, r := range records {
		add(r.Identifier(), r.Title)
	}
	for _, e := range edges {
		add(e.FromID, "")
		add(e.ToID, "")
	}

	for i := range nodes {
		nodes[i].Label = labels[nodes[i].ID]
	}
	if edges == nil {
		edges = []domain.GraphEdge{}
	}
	return Graph{Nodes: nodes, Edges: edges}
}
