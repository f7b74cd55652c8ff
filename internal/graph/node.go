package graph

import "github.com/ritamzico/gqlgraph/internal/value"

// NodeID is an opaque string identifier.
type NodeID string

// Node is a labelled, multi-label property-graph vertex.
type Node struct {
	ID     NodeID
	Labels []string
	Props  map[string]value.Value
}

// HasLabel reports whether the node carries the given label.
func (n *Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// ToValue converts the storage node to an expression-evaluation value.
func (n *Node) ToValue() value.Node {
	return value.Node{
		ID:     string(n.ID),
		Labels: append([]string(nil), n.Labels...),
		Props:  n.Props,
	}
}
