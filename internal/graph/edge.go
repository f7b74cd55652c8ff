package graph

import "github.com/ritamzico/gqlgraph/internal/value"

type EdgeID string

// Edge is a single-labelled, directed property-graph edge. The teacher's
// probabilistic edge (single Bernoulli probability per edge) generalises here
// to a plain labelled edge; the multigraph adjacency-list shape (several edges
// between the same two nodes, keyed by id) is kept as-is.
type Edge struct {
	ID       EdgeID
	From, To NodeID
	Label    string
	Props    map[string]value.Value
}

func (e *Edge) HasLabel(label string) bool {
	return label == "" || e.Label == label
}

func (e *Edge) ToValue() value.Edge {
	return value.Edge{
		ID:    string(e.ID),
		From:  string(e.From),
		To:    string(e.To),
		Label: e.Label,
		Props: e.Props,
	}
}
