// Package plan lowers a parsed Query into the internal/exec physical operator
// calls that actually build rows, and drives the mutation pipelines
// (MATCH/WITH/UNWIND/SET|REMOVE|DELETE) that write back to the graph.
package plan

import (
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/ritamzico/gqlgraph/internal/ast"
	"github.com/ritamzico/gqlgraph/internal/exec"
	"github.com/ritamzico/gqlgraph/internal/graph"
	"github.com/ritamzico/gqlgraph/internal/value"
)

// ErrUnsupportedQuery is raised for an ast.Query variant the planner has no
// lowering for (should not happen for anything internal/parser produces).
var ErrUnsupportedQuery = goerrors.NewKind("unsupported query form: %T")

// ErrSetOperationSchemaMismatch is raised when a UNION/INTERSECT/EXCEPT's two
// sides produce different column counts.
var ErrSetOperationSchemaMismatch = goerrors.NewKind(
	"set operation requires matching column counts, left has %d, right has %d")

// IDAllocator mints fresh node/edge identifiers for pattern elements an INSERT-
// position pattern constructs.
type IDAllocator interface {
	NewNodeID() graph.NodeID
	NewEdgeID() graph.EdgeID
}

// UndoRecorder appends one inverse-operation entry to the active transaction's
// undo log. A nil recorder means autocommit: mutations apply directly with
// nothing to roll back.
type UndoRecorder func(description string, undo func() error)

// Planner lowers and runs a Query against one mutable graph snapshot.
type Planner struct {
	Graph  graph.Model
	IDs    IDAllocator
	Params map[string]value.Value
	Undo   UndoRecorder
}

func (p *Planner) context() *exec.Context {
	return &exec.Context{Graph: p.Graph, Params: p.Params, RunQuery: p.RunQuery}
}

// EvalContext exposes the planner's expression-evaluation context, for
// callers (DECLARE/LET/AT statement handling) that need to evaluate a
// single expression outside of a full query pipeline.
func (p *Planner) EvalContext() *exec.Context { return p.context() }

// EvalOne evaluates a single expression against row.
func (p *Planner) EvalOne(e ast.Expr, row value.Row) (value.Value, error) {
	return exec.Eval(e, row, p.context())
}

// RunQuery is the exec.Context.RunQuery hook: it lets scalar subqueries,
// EXISTS, IN, and quantified comparisons recurse back into the planner.
func (p *Planner) RunQuery(q ast.Query, outer value.Row) ([]value.Row, []string, error) {
	return p.Execute(q, outer)
}

func (p *Planner) recordUndo(description string, undo func() error) {
	if p.Undo != nil {
		p.Undo(description, undo)
	}
}

// seedRows is the planner's SingleRow source: a correlated subquery starts
// from the enclosing row's bindings, an uncorrelated top-level query starts
// from one empty row.
func seedRows(outer value.Row) []value.Row {
	if len(outer.Values) == 0 {
		return exec.SingleRow()
	}
	return []value.Row{outer}
}

// Execute runs any top-level Query variant, returning its rows and the
// stable column order.
func (p *Planner) Execute(q ast.Query, outer value.Row) ([]value.Row, []string, error) {
	ctx := p.context()
	switch n := q.(type) {
	case *ast.BasicQuery:
		return p.execBasic(n, outer, ctx)

	case *ast.ReturnOnlyQuery:
		rows := seedRows(outer)
		return p.project(rows, n.Return, ctx)

	case *ast.SetOperationQuery:
		return p.execSetOperation(n, outer, ctx)

	case *ast.LimitedQuery:
		rows, cols, err := p.Execute(n.Inner, outer)
		if err != nil {
			return nil, nil, err
		}
		return p.applyTail(rows, cols, n.OrderBy, n.Limit, n.Offset, ctx)

	case *ast.WithQuery:
		rows, err := p.runSegments(n.Segments, seedRows(outer), ctx)
		if err != nil {
			return nil, nil, err
		}
		rows, cols, err := p.project(rows, n.Return, ctx)
		if err != nil {
			return nil, nil, err
		}
		return p.applyTail(rows, cols, n.OrderBy, n.Limit, n.Offset, ctx)

	case *ast.LetQuery:
		rows := seedRows(outer)
		for _, b := range n.Bindings {
			for i := range rows {
				v, err := exec.Eval(b.Expr, rows[i], ctx)
				if err != nil {
					return nil, nil, err
				}
				rows[i].Set(b.Name, v)
			}
		}
		return p.Execute(n.Next, unionRow(rows))

	case *ast.ForQuery:
		var out []value.Row
		for _, r := range seedRows(outer) {
			v, err := exec.Eval(n.Source, r, ctx)
			if err != nil {
				return nil, nil, err
			}
			items := v.List
			if v.Kind != value.ListKind {
				if v.IsNull() {
					continue
				}
				items = []value.Value{v}
			}
			for _, item := range items {
				nr := r.Clone()
				nr.Set(n.Variable, item)
				out = append(out, nr)
			}
		}
		return p.continueWith(n.Next, out)

	case *ast.FilterQuery:
		rows, err := exec.Filter(seedRows(outer), n.Condition, ctx)
		if err != nil {
			return nil, nil, err
		}
		return p.continueWith(n.Next, rows)

	case *ast.UnwindQuery:
		rows, err := exec.Unwind(seedRows(outer), &n.Unwind, ctx)
		if err != nil {
			return nil, nil, err
		}
		return p.continueWith(n.Next, rows)

	case *ast.MutationPipeline:
		return p.execMutation(n, outer, ctx)
	}
	return nil, nil, ErrUnsupportedQuery.New(q)
}

// continueWith threads already-produced rows into the next Query stage by
// running it once per row and concatenating results.
func (p *Planner) continueWith(next ast.Query, rows []value.Row) ([]value.Row, []string, error) {
	if len(rows) == 0 {
		return nil, columnsOf(next), nil
	}
	var out []value.Row
	var cols []string
	for _, r := range rows {
		sub, subCols, err := p.Execute(next, r)
		if err != nil {
			return nil, nil, err
		}
		cols = subCols
		out = append(out, sub...)
	}
	return out, cols, nil
}

// columnsOf best-effort names the projection columns of a Query with zero
// input rows, so an empty result set still reports a column list.
func columnsOf(q ast.Query) []string {
	switch n := q.(type) {
	case *ast.ReturnOnlyQuery:
		return projectionNames(n.Return.Items)
	case *ast.BasicQuery:
		return projectionNames(n.Return.Items)
	}
	return nil
}

func projectionNames(items []ast.ProjectionItem) []string {
	cols := make([]string, len(items))
	for i, it := range items {
		if it.Alias != "" {
			cols[i] = it.Alias
		}
	}
	return cols
}

// unionRow returns the first of rows (an empty row when there is none) for
// LET's single-row continuation: LET has no fan-out of its own, so its input
// row count never changes. Bindings of any further rows are not merged in.
func unionRow(rows []value.Row) value.Row {
	if len(rows) == 0 {
		return value.NewRow()
	}
	return rows[0]
}

func (p *Planner) execBasic(n *ast.BasicQuery, outer value.Row, ctx *exec.Context) ([]value.Row, []string, error) {
	rows := seedRows(outer)
	var err error
	for _, mc := range n.Matches {
		rows, err = p.applyMatchClause(mc, rows)
		if err != nil {
			return nil, nil, err
		}
	}
	rows, err = exec.Filter(rows, n.Where, ctx)
	if err != nil {
		return nil, nil, err
	}

	var cols []string
	if len(n.GroupBy) > 0 || exec.HasAggregates(n.Return.Items) {
		rows, cols, err = exec.HashAggregate(rows, n.GroupBy, n.Return.Items, n.Having, ctx)
	} else {
		rows, cols, err = exec.Project(rows, n.Return.Items, ctx)
	}
	if err != nil {
		return nil, nil, err
	}
	if n.Return.Distinct {
		rows = exec.Distinct(rows, cols)
	}
	return p.applyTail(rows, cols, n.OrderBy, n.Limit, n.Offset, ctx)
}

func (p *Planner) project(rows []value.Row, rc *ast.ReturnClause, ctx *exec.Context) ([]value.Row, []string, error) {
	var out []value.Row
	var cols []string
	var err error
	if exec.HasAggregates(rc.Items) {
		out, cols, err = exec.HashAggregate(rows, exec.GroupKeysOf(rc.Items), rc.Items, nil, ctx)
	} else {
		out, cols, err = exec.Project(rows, rc.Items, ctx)
	}
	if err != nil {
		return nil, nil, err
	}
	if rc.Distinct {
		out = exec.Distinct(out, cols)
	}
	return out, cols, nil
}

func (p *Planner) applyTail(rows []value.Row, cols []string, orderBy []ast.OrderItem, limitExpr, offsetExpr ast.Expr, ctx *exec.Context) ([]value.Row, []string, error) {
	rows, err := exec.InMemorySort(rows, orderBy, ctx)
	if err != nil {
		return nil, nil, err
	}
	limit, err := intPtr(limitExpr, ctx)
	if err != nil {
		return nil, nil, err
	}
	offset, err := intPtr(offsetExpr, ctx)
	if err != nil {
		return nil, nil, err
	}
	return exec.LimitOffset(rows, limit, offset), cols, nil
}

func intPtr(e ast.Expr, ctx *exec.Context) (*int, error) {
	if e == nil {
		return nil, nil
	}
	v, err := exec.Eval(e, value.NewRow(), ctx)
	if err != nil {
		return nil, err
	}
	if v.Kind != value.NumberKind {
		return nil, nil
	}
	n := int(v.Number)
	return &n, nil
}

// applyMatchClause expands every pattern in the clause against the input rows.
// OPTIONAL MATCH keeps the original (unbound) row whenever expansion yields
// nothing, so the pattern's variables read back NULL instead of dropping the
// row.
func (p *Planner) applyMatchClause(mc ast.MatchClause, rows []value.Row) ([]value.Row, error) {
	if !mc.Optional {
		var err error
		for _, pat := range mc.Patterns {
			rows, err = exec.MatchPattern(p.Graph, pat, rows)
			if err != nil {
				return nil, err
			}
		}
		return rows, nil
	}

	var out []value.Row
	for _, r := range rows {
		cur := []value.Row{r}
		for _, pat := range mc.Patterns {
			next, err := exec.MatchPattern(p.Graph, pat, cur)
			if err != nil {
				return nil, err
			}
			cur = next
			if len(cur) == 0 {
				break
			}
		}
		// cur's rows are already extensions of r (MatchPattern clones and
		// enriches it), so a left-outer join of {r} against cur reduces to
		// "keep every extension, or r itself with the pattern's variables
		// left unbound when nothing matched".
		joined, err := exec.Join([]value.Row{r}, cur, exec.JoinLeftOuter, nil, p.context())
		if err != nil {
			return nil, err
		}
		out = append(out, joined...)
	}
	return out, nil
}

// runSegments threads a WITH pipeline's MATCH/WHERE/WITH/UNWIND/WHERE stages,
// where WITH implicitly groups by its non-aggregating items when it mixes
// aggregate and plain expressions.
func (p *Planner) runSegments(segments []ast.WithSegment, rows []value.Row, ctx *exec.Context) ([]value.Row, error) {
	var err error
	for _, seg := range segments {
		rows, err = p.applyMatchClause(seg.Match, rows)
		if err != nil {
			return nil, err
		}
		rows, err = exec.Filter(rows, seg.PreWhere, ctx)
		if err != nil {
			return nil, err
		}
		if seg.With != nil {
			var cols []string
			if exec.HasAggregates(seg.With.Items) {
				rows, cols, err = exec.HashAggregate(rows, exec.GroupKeysOf(seg.With.Items), seg.With.Items, nil, ctx)
			} else {
				rows, cols, err = exec.Project(rows, seg.With.Items, ctx)
			}
			if err != nil {
				return nil, err
			}
			if seg.With.Distinct {
				rows = exec.Distinct(rows, cols)
			}
		}
		if seg.Unwind != nil {
			rows, err = exec.Unwind(rows, seg.Unwind, ctx)
			if err != nil {
				return nil, err
			}
		}
		rows, err = exec.Filter(rows, seg.PostWhere, ctx)
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (p *Planner) execSetOperation(n *ast.SetOperationQuery, outer value.Row, ctx *exec.Context) ([]value.Row, []string, error) {
	left, cols, err := p.Execute(n.Left, outer)
	if err != nil {
		return nil, nil, err
	}
	right, rightCols, err := p.Execute(n.Right, outer)
	if err != nil {
		return nil, nil, err
	}
	// Empty-result rows on either side adapt to the non-empty side's column
	// count; only a mismatch between two non-empty sides is an error.
	if len(left) > 0 && len(right) > 0 && len(cols) != len(rightCols) {
		return nil, nil, ErrSetOperationSchemaMismatch.New(len(cols), len(rightCols))
	}
	switch n.Op {
	case ast.Union:
		return exec.SetUnion(left, right, cols, n.All), cols, nil
	case ast.Intersect:
		return exec.SetIntersect(left, right, cols), cols, nil
	case ast.Except:
		return exec.SetExcept(left, right, cols), cols, nil
	}
	return nil, nil, ErrUnsupportedQuery.New(n)
}
