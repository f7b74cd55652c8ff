package router

import (
	"github.com/ritamzico/gqlgraph/internal/graph"
	"github.com/ritamzico/gqlgraph/internal/value"
)

// procedure is one built-in CALL target: it inspects the current graph and
// returns a row set plus its column names.
type procedure func(g graph.Model) ([]value.Row, []string, error)

// systemProcedures mirrors a small slice of the catalog-introspection
// procedures real GQL systems expose (node/edge label and property-key
// listings), grounded on the same "walk the in-memory maps" style the
// teacher's ProbabilisticAdjacencyListGraph uses for its own traversal
// helpers.
var systemProcedures = map[string]procedure{
	"db.labels":            procLabels,
	"db.relationshipTypes": procEdgeLabels,
	"db.propertyKeys":      procPropertyKeys,
	"db.nodeCount":         procNodeCount,
	"db.edgeCount":         procEdgeCount,
}

func procLabels(g graph.Model) ([]value.Row, []string, error) {
	seen := map[string]bool{}
	var out []value.Row
	for _, n := range g.GetAllNodes() {
		for _, l := range n.Labels {
			if seen[l] {
				continue
			}
			seen[l] = true
			r := value.NewRow()
			r.Set("label", value.Str(l))
			out = append(out, r)
		}
	}
	return out, []string{"label"}, nil
}

func procEdgeLabels(g graph.Model) ([]value.Row, []string, error) {
	seen := map[string]bool{}
	var out []value.Row
	for _, e := range g.GetEdges() {
		if e.Label == "" || seen[e.Label] {
			continue
		}
		seen[e.Label] = true
		r := value.NewRow()
		r.Set("relationshipType", value.Str(e.Label))
		out = append(out, r)
	}
	return out, []string{"relationshipType"}, nil
}

func procPropertyKeys(g graph.Model) ([]value.Row, []string, error) {
	seen := map[string]bool{}
	var out []value.Row
	for _, n := range g.GetAllNodes() {
		for k := range n.Props {
			if seen[k] {
				continue
			}
			seen[k] = true
			r := value.NewRow()
			r.Set("propertyKey", value.Str(k))
			out = append(out, r)
		}
	}
	for _, e := range g.GetEdges() {
		for k := range e.Props {
			if seen[k] {
				continue
			}
			seen[k] = true
			r := value.NewRow()
			r.Set("propertyKey", value.Str(k))
			out = append(out, r)
		}
	}
	return out, []string{"propertyKey"}, nil
}

func procNodeCount(g graph.Model) ([]value.Row, []string, error) {
	r := value.NewRow()
	r.Set("count", value.Int(int64(len(g.GetAllNodes()))))
	return []value.Row{r}, []string{"count"}, nil
}

func procEdgeCount(g graph.Model) ([]value.Row, []string, error) {
	r := value.NewRow()
	r.Set("count", value.Int(int64(len(g.GetEdges()))))
	return []value.Row{r}, []string{"count"}, nil
}
