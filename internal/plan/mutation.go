package plan

import (
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/ritamzico/gqlgraph/internal/ast"
	"github.com/ritamzico/gqlgraph/internal/exec"
	"github.com/ritamzico/gqlgraph/internal/graph"
	"github.com/ritamzico/gqlgraph/internal/value"
)

// ErrMutationTarget is raised when a SET/REMOVE/DELETE target does not
// evaluate to a bound node or edge.
var ErrMutationTarget = goerrors.NewKind("mutation target is not a node or edge")

// execMutation runs a MATCH/WITH/UNWIND pipeline and applies its terminal
// SET/REMOVE/DELETE to every resulting row.
func (p *Planner) execMutation(n *ast.MutationPipeline, outer value.Row, ctx *exec.Context) ([]value.Row, []string, error) {
	rows, err := p.runSegments(n.Segments, seedRows(outer), ctx)
	if err != nil {
		return nil, nil, err
	}
	if n.FinalUnwind != nil {
		rows, err = exec.Unwind(rows, n.FinalUnwind, ctx)
		if err != nil {
			return nil, nil, err
		}
	}
	rows, err = exec.Filter(rows, n.FinalWhere, ctx)
	if err != nil {
		return nil, nil, err
	}

	switch n.Mutation.Kind {
	case ast.MutationSet:
		err = p.ApplySet(rows, n.Mutation.SetOps, ctx)
	case ast.MutationRemove:
		err = p.ApplyRemove(rows, n.Mutation.Removes, ctx)
	case ast.MutationDelete:
		err = p.ApplyDelete(rows, n.Mutation.Deletes, n.Mutation.Detach, ctx)
	case ast.MutationInsert:
		for i, r := range rows {
			if err = p.InsertPattern(n.Mutation.Pattern, r, ctx); err != nil {
				break
			}
			rows[i] = r
		}
	}
	if err != nil {
		return nil, nil, err
	}
	return rows, nil, nil
}

// ApplySet evaluates each `target.property = value` assignment per row and
// writes it to the graph, recording an undo entry that restores the prior
// value.
func (p *Planner) ApplySet(rows []value.Row, items []ast.SetItem, ctx *exec.Context) error {
	for _, r := range rows {
		for _, item := range items {
			target, err := exec.Eval(item.Target, r, ctx)
			if err != nil {
				return err
			}
			val, err := exec.Eval(item.Value, r, ctx)
			if err != nil {
				return err
			}
			if err := p.setProperty(target, item.Property, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Planner) setProperty(target value.Value, prop string, val value.Value) error {
	switch target.Kind {
	case value.NodeKind:
		id := graph.NodeID(target.Node.ID)
		prior, hadPrior := target.Node.Props[prop]
		if err := p.Graph.SetNodeProperty(id, prop, val); err != nil {
			return err
		}
		p.recordUndo("set node property "+string(id)+"."+prop, func() error {
			if !hadPrior {
				return p.Graph.RemoveNodeProperty(id, prop)
			}
			return p.Graph.SetNodeProperty(id, prop, prior)
		})
		return nil
	case value.EdgeKind:
		id := graph.EdgeID(target.Edge.ID)
		prior, hadPrior := target.Edge.Props[prop]
		if err := p.Graph.SetEdgeProperty(id, prop, val); err != nil {
			return err
		}
		p.recordUndo("set edge property "+string(id)+"."+prop, func() error {
			if !hadPrior {
				return p.Graph.RemoveEdgeProperty(id, prop)
			}
			return p.Graph.SetEdgeProperty(id, prop, prior)
		})
		return nil
	}
	return ErrMutationTarget.New()
}

// ApplyRemove evaluates each REMOVE target, expected to be a property
// access expression, and clears that property.
func (p *Planner) ApplyRemove(rows []value.Row, removes []ast.Expr, ctx *exec.Context) error {
	for _, r := range rows {
		for _, target := range removes {
			pa, ok := target.(*ast.PropertyAccess)
			if !ok {
				continue
			}
			obj, err := exec.Eval(pa.Object, r, ctx)
			if err != nil {
				return err
			}
			if err := p.removeProperty(obj, pa.Property); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Planner) removeProperty(target value.Value, prop string) error {
	switch target.Kind {
	case value.NodeKind:
		id := graph.NodeID(target.Node.ID)
		prior, hadPrior := target.Node.Props[prop]
		if err := p.Graph.RemoveNodeProperty(id, prop); err != nil {
			return err
		}
		if hadPrior {
			p.recordUndo("restore node property "+string(id)+"."+prop, func() error {
				return p.Graph.SetNodeProperty(id, prop, prior)
			})
		}
		return nil
	case value.EdgeKind:
		id := graph.EdgeID(target.Edge.ID)
		prior, hadPrior := target.Edge.Props[prop]
		if err := p.Graph.RemoveEdgeProperty(id, prop); err != nil {
			return err
		}
		if hadPrior {
			p.recordUndo("restore edge property "+string(id)+"."+prop, func() error {
				return p.Graph.SetEdgeProperty(id, prop, prior)
			})
		}
		return nil
	}
	return ErrMutationTarget.New()
}

// ApplyDelete evaluates each DELETE target and removes the bound node or edge.
// detach removes a node's incident edges first; a non-detached node delete on a
// node with remaining edges fails instead of letting RemoveNode drop those
// edges silently.
func (p *Planner) ApplyDelete(rows []value.Row, deletes []ast.Expr, detach ast.DetachKind, ctx *exec.Context) error {
	for _, r := range rows {
		for _, target := range deletes {
			v, err := exec.Eval(target, r, ctx)
			if err != nil {
				return err
			}
			if v.Kind == value.ListKind {
				for _, item := range v.List {
					if err := p.deleteEntity(item, detach); err != nil {
						return err
					}
				}
				continue
			}
			if err := p.deleteEntity(v, detach); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Planner) deleteEntity(v value.Value, detach ast.DetachKind) error {
	switch v.Kind {
	case value.NodeKind:
		id := graph.NodeID(v.Node.ID)
		if detach != ast.Detach {
			edges, err := p.Graph.ConnectedEdges(id)
			if err != nil {
				return err
			}
			if len(edges) > 0 {
				return goerrors.NewKind("cannot delete node %s: it still has edges; use DETACH DELETE").New(id)
			}
		}
		if detach == ast.Detach {
			edges, err := p.Graph.ConnectedEdges(id)
			if err != nil {
				return err
			}
			for _, e := range edges {
				snapshot := *e
				if err := p.Graph.RemoveEdgeByID(e.ID); err != nil {
					return err
				}
				p.recordUndo("restore edge "+string(e.ID), func() error {
					return p.Graph.AddEdge(snapshot.ID, snapshot.From, snapshot.To, snapshot.Label, snapshot.Props)
				})
			}
		}
		n, err := p.Graph.GetNode(id)
		if err != nil {
			return err
		}
		snapshot := *n
		if err := p.Graph.RemoveNode(id); err != nil {
			return err
		}
		p.recordUndo("restore node "+string(id), func() error {
			return p.Graph.AddNode(snapshot.ID, snapshot.Labels, snapshot.Props)
		})
		return nil
	case value.EdgeKind:
		id := graph.EdgeID(v.Edge.ID)
		e, err := p.Graph.GetEdgeByID(id)
		if err != nil {
			return err
		}
		snapshot := *e
		if err := p.Graph.RemoveEdgeByID(id); err != nil {
			return err
		}
		p.recordUndo("restore edge "+string(id), func() error {
			return p.Graph.AddEdge(snapshot.ID, snapshot.From, snapshot.To, snapshot.Label, snapshot.Props)
		})
		return nil
	}
	return ErrMutationTarget.New()
}

// InsertPattern constructs fresh nodes and edges from a path pattern template.
// A node element whose variable is already bound in row (typically by a
// preceding MATCH in the same pipeline) and carries no labels or properties
// of its own is treated as a reference to that existing node rather than a
// new one; every other node element is created fresh. Property expressions
// are evaluated against row (empty for a bare top-level INSERT).
func (p *Planner) InsertPattern(pattern *ast.PathPattern, row value.Row, ctx *exec.Context) error {
	nodeIDs := make([]graph.NodeID, len(pattern.Nodes()))
	nodes := pattern.Nodes()
	for i, pn := range nodes {
		if pn.Variable != "" && len(pn.Labels) == 0 && len(pn.Props) == 0 {
			if existingID, ok := row.EntityIDs[pn.Variable]; ok {
				nodeIDs[i] = graph.NodeID(existingID)
				continue
			}
		}
		props, err := evalPropMap(pn.Props, row, ctx)
		if err != nil {
			return err
		}
		id := p.IDs.NewNodeID()
		if err := p.Graph.AddNode(id, pn.Labels, props); err != nil {
			return err
		}
		p.recordUndo("remove inserted node "+string(id), func() error {
			return p.Graph.RemoveNode(id)
		})
		nodeIDs[i] = id
		if pn.Variable != "" {
			n, _ := p.Graph.GetNode(id)
			row.Set(pn.Variable, value.FromNode(n.ToValue()))
		}
	}

	edges := pattern.Edges()
	for i, pe := range edges {
		props, err := evalPropMap(pe.Props, row, ctx)
		if err != nil {
			return err
		}
		from, to := nodeIDs[i], nodeIDs[i+1]
		if pe.Direction == ast.DirIncoming {
			from, to = to, from
		}
		id := p.IDs.NewEdgeID()
		label := ""
		if len(pe.Labels) > 0 {
			label = pe.Labels[0]
		}
		if err := p.Graph.AddEdge(id, from, to, label, props); err != nil {
			return err
		}
		p.recordUndo("remove inserted edge "+string(id), func() error {
			return p.Graph.RemoveEdgeByID(id)
		})
		if pe.Variable != "" {
			e, _ := p.Graph.GetEdgeByID(id)
			row.Set(pe.Variable, value.FromEdge(e.ToValue()))
		}
	}
	return nil
}

func evalPropMap(props map[string]ast.Expr, row value.Row, ctx *exec.Context) (map[string]value.Value, error) {
	if len(props) == 0 {
		return nil, nil
	}
	out := make(map[string]value.Value, len(props))
	for k, e := range props {
		v, err := exec.Eval(e, row, ctx)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}
