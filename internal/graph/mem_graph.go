package graph

import (
	"maps"
	"slices"

	"github.com/ritamzico/gqlgraph/internal/value"
)

// MemGraph is the in-memory adjacency-list Model, directly descended from the
// original ProbabilisticAdjacencyListGraph: same nodeMap/edgeMap/out/in shape,
// generalised from a single-edge-per-pair probabilistic multigraph to a genuine
// labelled multigraph (several edges between the same two nodes, keyed by edge
// id rather than by destination).
type MemGraph struct {
	nodeMap map[NodeID]*Node
	edgeMap map[EdgeID]*Edge
	out     map[NodeID]map[EdgeID]*Edge
	in      map[NodeID]map[EdgeID]*Edge
}

// NewMemGraph returns an empty graph.
func NewMemGraph() *MemGraph {
	return &MemGraph{
		nodeMap: make(map[NodeID]*Node),
		edgeMap: make(map[EdgeID]*Edge),
		out:     make(map[NodeID]map[EdgeID]*Edge),
		in:      make(map[NodeID]map[EdgeID]*Edge),
	}
}

func (g *MemGraph) AddNode(id NodeID, labels []string, props map[string]value.Value) error {
	if g.ContainsNode(id) {
		return NodeAlreadyExists(id)
	}

	g.nodeMap[id] = &Node{
		ID:     id,
		Labels: append([]string(nil), labels...),
		Props:  maps.Clone(props),
	}
	g.out[id] = make(map[EdgeID]*Edge)
	g.in[id] = make(map[EdgeID]*Edge)
	return nil
}

func (g *MemGraph) RemoveNode(id NodeID) error {
	if !g.ContainsNode(id) {
		return NodeDoesNotExist(id)
	}

	outgoing, _ := g.OutgoingEdges(id)
	incoming, _ := g.IncomingEdges(id)

	delete(g.nodeMap, id)

	for _, e := range outgoing {
		delete(g.in[e.To], e.ID)
		delete(g.edgeMap, e.ID)
	}
	delete(g.out, id)

	for _, e := range incoming {
		delete(g.out[e.From], e.ID)
		delete(g.edgeMap, e.ID)
	}
	delete(g.in, id)

	return nil
}

func (g *MemGraph) GetNode(id NodeID) (*Node, error) {
	n, ok := g.nodeMap[id]
	if !ok {
		return nil, NodeDoesNotExist(id)
	}
	return n, nil
}

func (g *MemGraph) GetAllNodes() []*Node {
	return slices.Collect(maps.Values(g.nodeMap))
}

func (g *MemGraph) GetNodesByLabel(label string) []*Node {
	var out []*Node
	for _, n := range g.nodeMap {
		if n.HasLabel(label) {
			out = append(out, n)
		}
	}
	return out
}

func (g *MemGraph) ContainsNode(id NodeID) bool {
	_, ok := g.nodeMap[id]
	return ok
}

func (g *MemGraph) SetNodeProperty(id NodeID, key string, val value.Value) error {
	n, ok := g.nodeMap[id]
	if !ok {
		return NodeDoesNotExist(id)
	}
	if n.Props == nil {
		n.Props = make(map[string]value.Value)
	}
	n.Props[key] = val
	return nil
}

func (g *MemGraph) RemoveNodeProperty(id NodeID, key string) error {
	n, ok := g.nodeMap[id]
	if !ok {
		return NodeDoesNotExist(id)
	}
	delete(n.Props, key)
	return nil
}

func (g *MemGraph) AddEdge(edgeID EdgeID, fromID, toID NodeID, label string, props map[string]value.Value) error {
	if g.ContainsEdgeByID(edgeID) {
		return EdgeAlreadyExists(edgeID)
	}
	if !g.ContainsNode(fromID) {
		return NodeDoesNotExist(fromID)
	}
	if !g.ContainsNode(toID) {
		return NodeDoesNotExist(toID)
	}

	e := &Edge{
		ID:    edgeID,
		From:  fromID,
		To:    toID,
		Label: label,
		Props: maps.Clone(props),
	}

	g.out[fromID][edgeID] = e
	g.in[toID][edgeID] = e
	g.edgeMap[edgeID] = e
	return nil
}

func (g *MemGraph) RemoveEdge(fromID, toID NodeID) error {
	if !g.ContainsNode(fromID) {
		return NodeDoesNotExist(fromID)
	}
	if !g.ContainsNode(toID) {
		return NodeDoesNotExist(toID)
	}
	if !g.ContainsEdge(fromID, toID) {
		return EdgeDoesNotExist(fromID, toID)
	}

	for id, e := range g.out[fromID] {
		if e.To == toID {
			delete(g.out[fromID], id)
			delete(g.in[toID], id)
			delete(g.edgeMap, id)
			return nil
		}
	}
	return EdgeDoesNotExist(fromID, toID)
}

func (g *MemGraph) RemoveEdgeByID(id EdgeID) error {
	e, ok := g.edgeMap[id]
	if !ok {
		return EdgeDoesNotExistByID(id)
	}
	delete(g.out[e.From], id)
	delete(g.in[e.To], id)
	delete(g.edgeMap, id)
	return nil
}

func (g *MemGraph) GetEdge(fromID, toID NodeID) (*Edge, error) {
	if !g.ContainsNode(fromID) {
		return nil, NodeDoesNotExist(fromID)
	}
	if !g.ContainsNode(toID) {
		return nil, NodeDoesNotExist(toID)
	}
	for _, e := range g.out[fromID] {
		if e.To == toID {
			return e, nil
		}
	}
	return nil, EdgeDoesNotExist(fromID, toID)
}

func (g *MemGraph) GetEdgeByID(id EdgeID) (*Edge, error) {
	e, ok := g.edgeMap[id]
	if !ok {
		return nil, EdgeDoesNotExistByID(id)
	}
	return e, nil
}

func (g *MemGraph) GetEdges() []*Edge {
	return slices.Collect(maps.Values(g.edgeMap))
}

func (g *MemGraph) ContainsEdge(fromID, toID NodeID) bool {
	for _, e := range g.out[fromID] {
		if e.To == toID {
			return true
		}
	}
	return false
}

func (g *MemGraph) ContainsEdgeByID(id EdgeID) bool {
	_, ok := g.edgeMap[id]
	return ok
}

func (g *MemGraph) SetEdgeProperty(id EdgeID, key string, val value.Value) error {
	e, ok := g.edgeMap[id]
	if !ok {
		return EdgeDoesNotExistByID(id)
	}
	if e.Props == nil {
		e.Props = make(map[string]value.Value)
	}
	e.Props[key] = val
	return nil
}

func (g *MemGraph) RemoveEdgeProperty(id EdgeID, key string) error {
	e, ok := g.edgeMap[id]
	if !ok {
		return EdgeDoesNotExistByID(id)
	}
	delete(e.Props, key)
	return nil
}

func (g *MemGraph) OutgoingEdges(id NodeID) ([]*Edge, error) {
	if !g.ContainsNode(id) {
		return nil, NodeDoesNotExist(id)
	}
	return slices.Collect(maps.Values(g.out[id])), nil
}

func (g *MemGraph) IncomingEdges(id NodeID) ([]*Edge, error) {
	if !g.ContainsNode(id) {
		return nil, NodeDoesNotExist(id)
	}
	return slices.Collect(maps.Values(g.in[id])), nil
}

func (g *MemGraph) ConnectedEdges(id NodeID) ([]*Edge, error) {
	out, err := g.OutgoingEdges(id)
	if err != nil {
		return nil, err
	}
	in, err := g.IncomingEdges(id)
	if err != nil {
		return nil, err
	}
	seen := make(map[EdgeID]bool, len(out)+len(in))
	var all []*Edge
	for _, e := range append(out, in...) {
		if !seen[e.ID] {
			seen[e.ID] = true
			all = append(all, e)
		}
	}
	return all, nil
}

func (g *MemGraph) AdjacentEdges(id NodeID, dir Direction) ([]*Edge, error) {
	switch dir {
	case Outgoing:
		return g.OutgoingEdges(id)
	case Incoming:
		return g.IncomingEdges(id)
	default:
		return g.ConnectedEdges(id)
	}
}

// Clone returns a deep copy, giving callers their own owned snapshot: storage
// hands out clones and mutations write back whole snapshots.
func (g *MemGraph) Clone() Model {
	clone := NewMemGraph()

	for id, n := range g.nodeMap {
		clone.nodeMap[id] = &Node{
			ID:     n.ID,
			Labels: append([]string(nil), n.Labels...),
			Props:  maps.Clone(n.Props),
		}
		clone.out[id] = make(map[EdgeID]*Edge)
		clone.in[id] = make(map[EdgeID]*Edge)
	}

	for id, e := range g.edgeMap {
		clone.edgeMap[id] = &Edge{
			ID:    e.ID,
			From:  e.From,
			To:    e.To,
			Label: e.Label,
			Props: maps.Clone(e.Props),
		}
	}

	for from, neighbors := range g.out {
		for id := range neighbors {
			ce := clone.edgeMap[id]
			clone.out[from][id] = ce
			clone.in[ce.To][id] = ce
		}
	}

	return clone
}
