package exec

import (
	"sort"

	"github.com/ritamzico/gqlgraph/internal/ast"
	"github.com/ritamzico/gqlgraph/internal/function"
	"github.com/ritamzico/gqlgraph/internal/graph"
	"github.com/ritamzico/gqlgraph/internal/value"
)

// SingleRow seeds a pipeline with exactly one empty row — the source for
// standalone RETURN/LET/FOR statements with no MATCH.
func SingleRow() []value.Row {
	return []value.Row{value.NewRow()}
}

// NodeSeqScan enumerates every node in the graph, binding it to variable
// (optionally restricted by label), one row per node.
func NodeSeqScan(g graph.Model, variable string, labels []string) ([]value.Row, error) {
	nodes := scanNodesImpl(g, labels)
	rows := make([]value.Row, 0, len(nodes))
	for _, n := range nodes {
		if !hasAllLabels(n, labels) {
			continue
		}
		row := value.NewRow()
		if variable != "" {
			row.BindNode(variable, n.ToValue())
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func hasAllLabels(n *graph.Node, labels []string) bool {
	for _, l := range labels {
		if !n.HasLabel(l) {
			return false
		}
	}
	return true
}

// pathState tracks the nodes and edges already consumed along one candidate
// path, enforcing the uniqueness pattern.PathType requires: TRAIL forbids
// reusing an edge, SIMPLE PATH and ACYCLIC PATH additionally forbid
// revisiting a node. WALK (and the unspecified default) impose no
// restriction. The state is path-local: it starts empty for every
// MatchPattern call and is never shared across separate MATCH clauses.
type pathState struct {
	nodes map[graph.NodeID]bool
	edges map[graph.EdgeID]bool
}

func newPathState() *pathState {
	return &pathState{nodes: map[graph.NodeID]bool{}, edges: map[graph.EdgeID]bool{}}
}

func (s *pathState) clone() *pathState {
	out := newPathState()
	for k := range s.nodes {
		out.nodes[k] = true
	}
	for k := range s.edges {
		out.edges[k] = true
	}
	return out
}

// visitNode records a node on the path, rejecting a repeat when pt forbids
// revisiting vertices.
func (s *pathState) visitNode(id graph.NodeID, pt ast.PathType) (*pathState, bool) {
	if (pt == ast.SimplePath || pt == ast.AcyclicPath) && s.nodes[id] {
		return nil, false
	}
	next := s.clone()
	next.nodes[id] = true
	return next, true
}

// visitEdges records a run of edges taken in one hop (a quantified edge may
// cover several), walking the intermediate vertices so SIMPLE PATH/ACYCLIC
// PATH see every node the hop passes through, not just its endpoint.
func (s *pathState) visitEdges(edges []*graph.Edge, pt ast.PathType, from graph.NodeID) (*pathState, bool) {
	next := s.clone()
	cur := from
	for _, e := range edges {
		if (pt == ast.Trail || pt == ast.SimplePath || pt == ast.AcyclicPath) && next.edges[e.ID] {
			return nil, false
		}
		next.edges[e.ID] = true
		cur = otherEnd(e, cur)
		if pt == ast.SimplePath || pt == ast.AcyclicPath {
			if next.nodes[cur] {
				return nil, false
			}
			next.nodes[cur] = true
		}
	}
	return next, true
}

// MatchPattern expands a single path pattern against each input row via
// repeated HashExpand-style steps: a node seed, followed by an edge-then-
// node expansion for every subsequent element. Quantified edges use a
// frontier/visited-set BFS instead of one fixed hop. A pathState travels
// alongside each candidate row to enforce pattern.PathType across the whole
// path, not just within one quantified edge's own expansion.
func MatchPattern(g graph.Model, pattern *ast.PathPattern, in []value.Row) ([]value.Row, error) {
	nodes := pattern.Nodes()
	edges := pattern.Edges()
	if len(nodes) == 0 {
		return in, nil
	}

	states := make([]*pathState, len(in))
	for i := range in {
		states[i] = newPathState()
	}

	rows, states, err := expandNode(g, nodes[0], in, states, pattern.PathType)
	if err != nil {
		return nil, err
	}

	for i, edge := range edges {
		rows, states, err = expandEdge(g, edge, nodes[i+1], rows, states, pattern.PathType)
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// expandNode filters/binds a pattern node against every candidate node in
// the graph, joined onto each input row (the NodeSeqScan + Filter + join
// combination, fused for pattern matching).
func expandNode(g graph.Model, pn *ast.PatternNode, in []value.Row, states []*pathState, pt ast.PathType) ([]value.Row, []*pathState, error) {
	if pn.Variable != "" {
		// If the variable is already bound upstream (repeated node in the
		// same pattern, or threaded from an earlier MATCH clause), re-check
		// its existing binding instead of re-scanning.
		var stillUnbound []value.Row
		var stillStates []*pathState
		var out []value.Row
		var outStates []*pathState
		for i, row := range in {
			if v, ok := row.Get(pn.Variable); ok && v.Kind == value.NodeKind {
				n, err := g.GetNode(graph.NodeID(v.Node.ID))
				if err != nil {
					continue
				}
				if matchesNode(n, pn) {
					next, ok := states[i].visitNode(n.ID, pt)
					if !ok {
						continue
					}
					out = append(out, row)
					outStates = append(outStates, next)
				}
				continue
			}
			stillUnbound = append(stillUnbound, row)
			stillStates = append(stillStates, states[i])
		}
		if len(stillUnbound) == 0 {
			return out, outStates, nil
		}
		fresh, freshStates, err := scanAndJoin(g, pn, stillUnbound, stillStates, pt)
		if err != nil {
			return nil, nil, err
		}
		return append(out, fresh...), append(outStates, freshStates...), nil
	}
	return scanAndJoin(g, pn, in, states, pt)
}

func scanAndJoin(g graph.Model, pn *ast.PatternNode, in []value.Row, states []*pathState, pt ast.PathType) ([]value.Row, []*pathState, error) {
	var labels []string
	if len(pn.Labels) > 0 {
		labels = pn.Labels
	}
	nodes := scanNodesImpl(g, labels)
	var out []value.Row
	var outStates []*pathState
	for i, row := range in {
		for _, n := range nodes {
			if !matchesNode(n, pn) {
				continue
			}
			ctx := &Context{Graph: g}
			ok, err := matchesProps(n.Props, pn.Props, row, ctx)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				continue
			}
			next, ok := states[i].visitNode(n.ID, pt)
			if !ok {
				continue
			}
			nr := row.Clone()
			if pn.Variable != "" {
				nr.BindNode(pn.Variable, n.ToValue())
			}
			out = append(out, nr)
			outStates = append(outStates, next)
		}
	}
	return out, outStates, nil
}

func scanNodesImpl(g graph.Model, labels []string) []*graph.Node {
	if len(labels) == 0 {
		return g.GetAllNodes()
	}
	return g.GetNodesByLabel(labels[0])
}

func matchesNode(n *graph.Node, pn *ast.PatternNode) bool {
	return hasAllLabels(n, pn.Labels)
}

func matchesProps(have map[string]value.Value, want map[string]ast.Expr, row value.Row, ctx *Context) (bool, error) {
	for k, wantExpr := range want {
		wv, err := Eval(wantExpr, row, ctx)
		if err != nil {
			return false, err
		}
		hv, ok := have[k]
		if !ok || !hv.Equal(wv) {
			return false, nil
		}
	}
	return true, nil
}

// expandEdge walks from the previously-bound node through an edge pattern to a
// new node pattern. A quantifier triggers a bounded BFS instead of a single
// hop.
func expandEdge(g graph.Model, pe *ast.PatternEdge, nextNode *ast.PatternNode, in []value.Row, states []*pathState, pt ast.PathType) ([]value.Row, []*pathState, error) {
	var out []value.Row
	var outStates []*pathState
	for ri, row := range in {
		fromVar := latestBoundNodeVar(row)
		if fromVar == "" {
			continue
		}
		fromID, ok := row.EntityIDs[fromVar]
		if !ok {
			continue
		}

		hops, err := reachableHops(g, graph.NodeID(fromID), pe)
		if err != nil {
			return nil, nil, err
		}
		for _, hop := range hops {
			n, err := g.GetNode(hop.to)
			if err != nil || !matchesNode(n, nextNode) {
				continue
			}
			ctx := &Context{Graph: g}
			ok, err := matchesProps(n.Props, nextNode.Props, row, ctx)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				continue
			}
			next, ok := states[ri].visitEdges(hop.edges, pt, graph.NodeID(fromID))
			if !ok {
				continue
			}
			nr := row.Clone()
			if pe.Variable != "" {
				if len(hop.edges) == 1 {
					nr.BindEdge(pe.Variable, hop.edges[0].ToValue())
				} else {
					items := make([]value.Value, len(hop.edges))
					for i, e := range hop.edges {
						items[i] = value.FromEdge(e.ToValue())
					}
					nr.Set(pe.Variable, value.List(items))
				}
			}
			if nextNode.Variable != "" {
				nr.BindNode(nextNode.Variable, n.ToValue())
			}
			out = append(out, nr)
			outStates = append(outStates, next)
		}
	}
	return out, outStates, nil
}

// latestBoundNodeVar is a pragmatic stand-in for plan-time knowledge of
// "the node this edge starts from": it is always the most recently bound
// node, since expandNode/expandEdge run left to right over the pattern's
// element list.
func latestBoundNodeVar(row value.Row) string {
	return row.LastBoundNode
}

type hop struct {
	to    graph.NodeID
	edges []*graph.Edge
}

// reachableHops enumerates every node reachable from `from` consistent with
// the edge pattern's direction and quantifier. A frontier/visited-set BFS is
// used for multi-hop quantifiers; un-quantified edges take exactly one hop.
func reachableHops(g graph.Model, from graph.NodeID, pe *ast.PatternEdge) ([]hop, error) {
	min, max := 1, 1
	if pe.Quantifier != nil {
		switch pe.Quantifier.Kind {
		case ast.QuantOptional:
			min, max = 0, 1
		case ast.QuantExact:
			min, max = pe.Quantifier.N, pe.Quantifier.N
		case ast.QuantRange:
			min, max = pe.Quantifier.N, pe.Quantifier.M
		case ast.QuantAtLeast:
			min, max = pe.Quantifier.N, pe.Quantifier.N+10 // capped, no explicit upper bound given
		case ast.QuantAtMost:
			min, max = 0, pe.Quantifier.N
		}
	}

	type frontierNode struct {
		id    graph.NodeID
		edges []*graph.Edge
	}
	var results []hop
	seen := map[graph.NodeID]bool{from: true}
	frontier := []frontierNode{{id: from}}

	if min == 0 {
		results = append(results, hop{to: from})
	}

	for depth := 1; depth <= max; depth++ {
		var next []frontierNode
		for _, f := range frontier {
			adj, err := edgesInDirection(g, f.id, pe.Direction)
			if err != nil {
				return nil, err
			}
			for _, e := range adj {
				if !matchesEdgeLabels(e, pe.Labels) {
					continue
				}
				to := otherEnd(e, f.id)
				edges := append(append([]*graph.Edge(nil), f.edges...), e)
				if depth >= min {
					results = append(results, hop{to: to, edges: edges})
				}
				if !seen[to] || pe.Quantifier == nil {
					next = append(next, frontierNode{id: to, edges: edges})
				}
			}
		}
		if len(next) == 0 {
			break
		}
		for _, n := range next {
			seen[n.id] = true
		}
		frontier = next
	}
	return results, nil
}

func matchesEdgeLabels(e *graph.Edge, labels []string) bool {
	if len(labels) == 0 {
		return true
	}
	for _, l := range labels {
		if e.HasLabel(l) {
			return true
		}
	}
	return false
}

func otherEnd(e *graph.Edge, from graph.NodeID) graph.NodeID {
	if e.From == from {
		return e.To
	}
	return e.From
}

func edgesInDirection(g graph.Model, id graph.NodeID, dir ast.EdgeDirection) ([]*graph.Edge, error) {
	switch dir {
	case ast.DirOutgoing:
		return g.OutgoingEdges(id)
	case ast.DirIncoming:
		return g.IncomingEdges(id)
	default:
		return g.ConnectedEdges(id)
	}
}

// Filter keeps only rows whose condition evaluates to boolean TRUE.
func Filter(rows []value.Row, cond ast.Expr, ctx *Context) ([]value.Row, error) {
	if cond == nil {
		return rows, nil
	}
	var out []value.Row
	for _, r := range rows {
		v, err := Eval(cond, r, ctx)
		if err != nil {
			return nil, err
		}
		if v.IsTrue() {
			out = append(out, r)
		}
	}
	return out, nil
}

// Project evaluates the projection list against every row, returning new
// rows plus the stable column order. Each column is keyed by its alias; an
// un-aliased item is keyed by its variable name, by renderCallName for a
// function call, and otherwise by "col" followed by its position.
func Project(rows []value.Row, items []ast.ProjectionItem, ctx *Context) ([]value.Row, []string, error) {
	if len(items) == 1 && items[0].Star {
		return rows, starColumns(rows), nil
	}

	cols := make([]string, len(items))
	for i, it := range items {
		cols[i] = projectionName(it, i)
	}

	out := make([]value.Row, 0, len(rows))
	for _, r := range rows {
		nr := value.NewRow()
		for i, it := range items {
			v, err := Eval(it.Expr, r, ctx)
			if err != nil {
				return nil, nil, err
			}
			nr.Set(cols[i], v)
			if v.Kind == value.NodeKind || v.Kind == value.EdgeKind {
				if nr.EntityIDs == nil {
					nr.EntityIDs = map[string]string{}
				}
				if v.Kind == value.NodeKind {
					nr.EntityIDs[cols[i]] = v.Node.ID
					nr.LastBoundNode = cols[i]
				} else {
					nr.EntityIDs[cols[i]] = v.Edge.ID
				}
			}
		}
		out = append(out, nr)
	}
	return out, cols, nil
}

func starColumns(rows []value.Row) []string {
	if len(rows) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var cols []string
	for k := range rows[0].Values {
		if !seen[k] {
			seen[k] = true
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return cols
}

func projectionName(it ast.ProjectionItem, idx int) string {
	if it.Alias != "" {
		return it.Alias
	}
	if v, ok := it.Expr.(*ast.Variable); ok {
		return v.Name
	}
	if call, ok := it.Expr.(*ast.FunctionCall); ok {
		return renderCallName(call)
	}
	return "col" + itoa(idx)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

// Limit/Offset truncates the row set.
func LimitOffset(rows []value.Row, limit, offset *int) []value.Row {
	if offset != nil {
		if *offset >= len(rows) {
			return nil
		}
		rows = rows[*offset:]
	}
	if limit != nil && *limit < len(rows) {
		rows = rows[:*limit]
	}
	return rows
}

// InMemorySort orders rows by the ORDER BY list, NULLs ordered according to
// each item's NullsFirst override (defaulting to NULLs-last ascending /
// NULLs-first descending, the common SQL default).
func InMemorySort(rows []value.Row, items []ast.OrderItem, ctx *Context) ([]value.Row, error) {
	if len(items) == 0 {
		return rows, nil
	}
	type key struct {
		vals []value.Value
	}
	keys := make([]key, len(rows))
	for i, r := range rows {
		vals := make([]value.Value, len(items))
		for j, it := range items {
			v, err := Eval(it.Expr, r, ctx)
			if err != nil {
				return nil, err
			}
			vals[j] = v
		}
		keys[i] = key{vals: vals}
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		for j, it := range items {
			va, vb := ka.vals[j], kb.vals[j]
			if va.IsNull() || vb.IsNull() {
				if va.IsNull() == vb.IsNull() {
					continue
				}
				nullsFirst := it.Descending
				if it.NullsFirst != nil {
					nullsFirst = *it.NullsFirst
				}
				if va.IsNull() {
					return nullsFirst
				}
				return !nullsFirst
			}
			cmp, ok := value.Compare(va, vb)
			if !ok || cmp == 0 {
				continue
			}
			if it.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	out := make([]value.Row, len(rows))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out, nil
}

// Distinct deduplicates rows by their full value signature.
func Distinct(rows []value.Row, cols []string) []value.Row {
	seen := map[string]bool{}
	var out []value.Row
	for _, r := range rows {
		sig := value.PositionalSignature(r.ToPositional(cols))
		if !seen[sig] {
			seen[sig] = true
			out = append(out, r)
		}
	}
	return out
}

// Unwind expands a list-valued expression into one row per element, binding it
// to variable.
func Unwind(rows []value.Row, uc *ast.UnwindClause, ctx *Context) ([]value.Row, error) {
	var out []value.Row
	for _, r := range rows {
		v, err := Eval(uc.Expr, r, ctx)
		if err != nil {
			return nil, err
		}
		if v.Kind != value.ListKind {
			if v.IsNull() {
				continue
			}
			nr := r.Clone()
			nr.Set(uc.Variable, v)
			out = append(out, nr)
			continue
		}
		for _, item := range v.List {
			nr := r.Clone()
			nr.Set(uc.Variable, item)
			out = append(out, nr)
		}
	}
	return out, nil
}

// HashAggregate groups rows by groupBy expressions and folds the projection
// list's aggregate calls via internal/function's Aggregate accumulators.
func HashAggregate(rows []value.Row, groupBy []ast.Expr, items []ast.ProjectionItem, having ast.Expr, ctx *Context) ([]value.Row, []string, error) {
	type group struct {
		keyRow value.Row
		states map[string]function.AggState
	}
	order := []string{}
	groups := map[string]*group{}

	aggCalls := collectAggregateCalls(items)

	if len(groupBy) == 0 && len(rows) == 0 {
		grp := &group{keyRow: value.NewRow(), states: map[string]function.AggState{}}
		for _, call := range aggCalls {
			agg, _ := function.LookupAggregate(call.Name)
			grp.states[renderCallName(call)] = agg.NewState()
		}
		sig := value.PositionalSignature(nil)
		groups[sig] = grp
		order = append(order, sig)
	}

	for _, r := range rows {
		keyVals := make([]value.Value, len(groupBy))
		for i, g := range groupBy {
			v, err := Eval(g, r, ctx)
			if err != nil {
				return nil, nil, err
			}
			keyVals[i] = v
		}
		sig := value.PositionalSignature(keyVals)
		grp, ok := groups[sig]
		if !ok {
			kr := value.NewRow()
			for i, g := range groupBy {
				if v, isVar := g.(*ast.Variable); isVar {
					kr.Set(v.Name, keyVals[i])
				}
			}
			grp = &group{keyRow: kr, states: map[string]function.AggState{}}
			for _, call := range aggCalls {
				agg, _ := function.LookupAggregate(call.Name)
				grp.states[renderCallName(call)] = agg.NewState()
			}
			groups[sig] = grp
			order = append(order, sig)
		}
		for _, call := range aggCalls {
			name := renderCallName(call)
			if call.Star {
				grp.states[name].Step(value.Int(1))
				continue
			}
			var v value.Value
			if len(call.Args) > 0 {
				var err error
				v, err = Eval(call.Args[0], r, ctx)
				if err != nil {
					return nil, nil, err
				}
			}
			grp.states[name].Step(v)
		}
	}

	out := make([]value.Row, 0, len(order))
	for _, sig := range order {
		grp := groups[sig]
		nr := grp.keyRow.Clone()
		for name, st := range grp.states {
			nr.Set(name, st.Finish())
		}
		out = append(out, nr)
	}

	filtered, err := Filter(out, having, ctx)
	if err != nil {
		return nil, nil, err
	}

	return Project(filtered, items, ctx)
}

// HasAggregates reports whether any projection item's expression tree
// contains an aggregate call (used by WITH/RETURN to decide whether
// implicit grouping applies, as a plain projection has none).
func HasAggregates(items []ast.ProjectionItem) bool {
	return len(collectAggregateCalls(items)) > 0
}

// GroupKeysOf returns the expressions of every projection item that is not
// itself aggregating, the implicit GROUP BY key set a WITH/RETURN clause uses
// when it mixes aggregate and non-aggregate items with no explicit GROUP BY.
func GroupKeysOf(items []ast.ProjectionItem) []ast.Expr {
	var keys []ast.Expr
	for _, it := range items {
		if it.Expr == nil || len(collectAggregateCalls([]ast.ProjectionItem{it})) > 0 {
			continue
		}
		keys = append(keys, it.Expr)
	}
	return keys
}

func collectAggregateCalls(items []ast.ProjectionItem) []*ast.FunctionCall {
	var out []*ast.FunctionCall
	var walk func(e ast.Expr)
	walk = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.FunctionCall:
			if function.IsAggregate(n.Name) {
				out = append(out, n)
				return
			}
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.Binary:
			walk(n.Left)
			walk(n.Right)
		case *ast.Unary:
			walk(n.Operand)
		}
	}
	for _, it := range items {
		if it.Expr != nil {
			walk(it.Expr)
		}
	}
	return out
}

// UnionAll concatenates two row sets with no dedup.
func UnionAll(a, b []value.Row) []value.Row {
	return append(append([]value.Row(nil), a...), b...)
}

// setSignature picks identity-mode (bound entity ids) or value-mode (positional
// values) row comparison depending on whether any row carries entity bindings.
func setSignature(r value.Row, cols []string) (string, bool) {
	if len(r.EntityIDs) > 0 {
		return r.EntitySignature(), true
	}
	return value.PositionalSignature(r.ToPositional(cols)), false
}

// SetUnion applies UNION [ALL] semantics: ALL skips dedup, otherwise rows are
// deduplicated by identity or value signature.
func SetUnion(a, b []value.Row, cols []string, all bool) []value.Row {
	combined := UnionAll(a, b)
	if all {
		return combined
	}
	seen := map[string]bool{}
	var out []value.Row
	for _, r := range combined {
		sig, _ := setSignature(r, cols)
		if !seen[sig] {
			seen[sig] = true
			out = append(out, r)
		}
	}
	return out
}

// SetIntersect keeps rows of a that also appear in b by signature. Any row with
// a NULL positional value is excluded in value mode.
func SetIntersect(a, b []value.Row, cols []string) []value.Row {
	bSigs := map[string]bool{}
	for _, r := range b {
		sig, _ := setSignature(r, cols)
		bSigs[sig] = true
	}
	var out []value.Row
	seen := map[string]bool{}
	for _, r := range a {
		sig, identity := setSignature(r, cols)
		if !identity && value.HasNull(r.ToPositional(cols)) {
			continue
		}
		if bSigs[sig] && !seen[sig] {
			seen[sig] = true
			out = append(out, r)
		}
	}
	return out
}

// SetExcept keeps rows of a not present in b by signature.
func SetExcept(a, b []value.Row, cols []string) []value.Row {
	bSigs := map[string]bool{}
	for _, r := range b {
		sig, _ := setSignature(r, cols)
		bSigs[sig] = true
	}
	var out []value.Row
	seen := map[string]bool{}
	for _, r := range a {
		sig, _ := setSignature(r, cols)
		if bSigs[sig] || seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, r)
	}
	return out
}
