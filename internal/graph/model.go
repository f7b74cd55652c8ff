package graph

import "github.com/ritamzico/gqlgraph/internal/value"

// Direction mirrors the edge-direction markers in the data model.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
	Both
)

// Model is the storage facade's graph snapshot contract. The core only ever
// consumes this interface; disk persistence, WAL, and locking live outside it.
type Model interface {
	AddNode(id NodeID, labels []string, props map[string]value.Value) error
	RemoveNode(id NodeID) error
	GetNode(id NodeID) (*Node, error)
	GetAllNodes() []*Node
	GetNodesByLabel(label string) []*Node
	ContainsNode(id NodeID) bool
	SetNodeProperty(id NodeID, key string, val value.Value) error
	RemoveNodeProperty(id NodeID, key string) error

	AddEdge(edgeID EdgeID, fromID, toID NodeID, label string, props map[string]value.Value) error
	RemoveEdge(fromID, toID NodeID) error
	RemoveEdgeByID(id EdgeID) error
	GetEdge(fromID, toID NodeID) (*Edge, error)
	GetEdgeByID(id EdgeID) (*Edge, error)
	GetEdges() []*Edge
	ContainsEdge(fromID, toID NodeID) bool
	ContainsEdgeByID(id EdgeID) bool
	SetEdgeProperty(id EdgeID, key string, val value.Value) error
	RemoveEdgeProperty(id EdgeID, key string) error

	OutgoingEdges(id NodeID) ([]*Edge, error)
	IncomingEdges(id NodeID) ([]*Edge, error)
	ConnectedEdges(id NodeID) ([]*Edge, error)
	AdjacentEdges(id NodeID, dir Direction) ([]*Edge, error)

	Clone() Model
}
