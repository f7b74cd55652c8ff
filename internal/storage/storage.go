// Package storage is the storage facade kept deliberately outside the core
// engine's scope: graph persistence, the WAL, and disk I/O are external
// collaborators. This package is a minimal in-memory stand-in that gives the
// rest of the core something concrete to run against end to end; it carries
// none of the durability guarantees a real storage engine would.
package storage

import (
	"sync"

	"github.com/google/uuid"
	"github.com/ritamzico/gqlgraph/internal/graph"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

var ErrGraphNotFound = goerrors.NewKind("graph %q not found")

// Facade is the interface the executor/router depend on.
type Facade interface {
	GetGraph(name string) (graph.Model, bool)
	ListGraphs() []string
	GetGraphNames() []string
	SaveGraph(name string, g graph.Model) error
	CreateGraph(name string) (graph.Model, error)
	DropGraph(name string) error
	CreateGraphUnion(names []string) (graph.Model, error)
	NewNodeID() graph.NodeID
	NewEdgeID() graph.EdgeID
}

// MemFacade is a thread-safe in-memory implementation; a read-write lock guards
// the name->graph map so each graph is checked out as an independent snapshot.
type MemFacade struct {
	mu     sync.RWMutex
	graphs map[string]graph.Model
}

func NewMemFacade() *MemFacade {
	return &MemFacade{graphs: make(map[string]graph.Model)}
}

// GetGraph returns an owned snapshot (Clone) of the named graph so callers may
// mutate it freely without racing other readers.
func (f *MemFacade) GetGraph(name string) (graph.Model, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	g, ok := f.graphs[name]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

func (f *MemFacade) ListGraphs() []string {
	return f.GetGraphNames()
}

func (f *MemFacade) GetGraphNames() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.graphs))
	for name := range f.graphs {
		names = append(names, name)
	}
	return names
}

func (f *MemFacade) SaveGraph(name string, g graph.Model) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.graphs[name] = g
	return nil
}

func (f *MemFacade) CreateGraph(name string) (graph.Model, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := graph.NewMemGraph()
	f.graphs[name] = g
	return g, nil
}

func (f *MemFacade) DropGraph(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.graphs[name]; !ok {
		return ErrGraphNotFound.New(name)
	}
	delete(f.graphs, name)
	return nil
}

// CreateGraphUnion builds a read-only merged snapshot over several named
// graphs.
func (f *MemFacade) CreateGraphUnion(names []string) (graph.Model, error) {
	union := graph.NewMemGraph()

	for _, name := range names {
		g, ok := f.GetGraph(name)
		if !ok {
			return nil, ErrGraphNotFound.New(name)
		}
		for _, n := range g.GetAllNodes() {
			if !union.ContainsNode(n.ID) {
				_ = union.AddNode(n.ID, n.Labels, n.Props)
			}
		}
		for _, e := range g.GetEdges() {
			if !union.ContainsEdgeByID(e.ID) {
				_ = union.AddEdge(e.ID, e.From, e.To, e.Label, e.Props)
			}
		}
	}

	return union, nil
}

func (f *MemFacade) NewNodeID() graph.NodeID { return graph.NodeID(uuid.NewString()) }
func (f *MemFacade) NewEdgeID() graph.EdgeID { return graph.EdgeID(uuid.NewString()) }
