// Package exec implements the physical operators and the expression evaluator
// that internal/plan composes into a runnable query.
package exec

import (
	"strings"

	"github.com/ritamzico/gqlgraph/internal/ast"
	"github.com/ritamzico/gqlgraph/internal/function"
	"github.com/ritamzico/gqlgraph/internal/graph"
	"github.com/ritamzico/gqlgraph/internal/value"
)

// Context carries everything expression evaluation and pattern matching need
// that isn't already in the row: the graph being queried, bind parameters, and
// a callback into the query planner for subqueries/EXISTS.
type Context struct {
	Graph    graph.Model
	Params   map[string]value.Value
	RunQuery func(q ast.Query, outer value.Row) ([]value.Row, []string, error)
}

// Eval evaluates an expression against one row under three-valued logic.
func Eval(e ast.Expr, row value.Row, ctx *Context) (value.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return n.Value, nil

	case *ast.Variable:
		if v, ok := row.Get(n.Name); ok {
			return v, nil
		}
		return value.Null, nil

	case *ast.Parameter:
		if v, ok := ctx.Params[n.Name]; ok {
			return v, nil
		}
		return value.Null, nil

	case *ast.PropertyAccess:
		return evalPropertyAccess(n, row, ctx)

	case *ast.IndexAccess:
		obj, err := Eval(n.Object, row, ctx)
		if err != nil {
			return value.Null, err
		}
		idx, err := Eval(n.Index, row, ctx)
		if err != nil {
			return value.Null, err
		}
		if obj.Kind != value.ListKind || idx.Kind != value.NumberKind {
			return value.Null, nil
		}
		i := int(idx.Number)
		if i < 0 || i >= len(obj.List) {
			return value.Null, nil
		}
		return obj.List[i], nil

	case *ast.Unary:
		return evalUnary(n, row, ctx)

	case *ast.Binary:
		return evalBinary(n, row, ctx)

	case *ast.Like:
		return evalLike(n, row, ctx)

	case *ast.FunctionCall:
		return evalFunctionCall(n, row, ctx)

	case *ast.CaseExpr:
		return evalCase(n, row, ctx)

	case *ast.CastExpr:
		return evalCast(n, row, ctx)

	case *ast.ListExpr:
		items := make([]value.Value, len(n.Items))
		for i, it := range n.Items {
			v, err := Eval(it, row, ctx)
			if err != nil {
				return value.Null, err
			}
			items[i] = v
		}
		return value.List(items), nil

	case *ast.PathConstructor:
		return evalPathConstructor(n, row, ctx)

	case *ast.SubqueryExpr:
		rows, cols, err := ctx.RunQuery(n.Query, row)
		if err != nil {
			return value.Null, err
		}
		if len(rows) == 0 || len(cols) == 0 {
			return value.Null, nil
		}
		if len(rows) > 1 {
			return value.Null, ErrScalarSubqueryMultipleRows.New(len(rows))
		}
		return rows[0].Values[cols[0]], nil

	case *ast.ExistsExpr:
		rows, _, err := ctx.RunQuery(n.Query, row)
		if err != nil {
			return value.Null, err
		}
		exists := len(rows) > 0
		if n.Negate {
			exists = !exists
		}
		return value.Bool(exists), nil

	case *ast.InExpr:
		return evalIn(n, row, ctx)

	case *ast.IsExpr:
		return evalIs(n, row, ctx)

	case *ast.QuantifiedComparison:
		return evalQuantified(n, row, ctx)

	case *ast.PatternExpr:
		rows, err := MatchPattern(ctx.Graph, n.Pattern, []value.Row{row})
		if err != nil {
			return value.Null, err
		}
		return value.Bool(len(rows) > 0), nil
	}
	return value.Null, nil
}

func evalPropertyAccess(n *ast.PropertyAccess, row value.Row, ctx *Context) (value.Value, error) {
	if v, ok := n.Object.(*ast.Variable); ok {
		if pv, ok := row.Get(v.Name + "." + n.Property); ok {
			return pv, nil
		}
	}
	obj, err := Eval(n.Object, row, ctx)
	if err != nil {
		return value.Null, err
	}
	var props map[string]value.Value
	switch obj.Kind {
	case value.NodeKind:
		props = obj.Node.Props
	case value.EdgeKind:
		props = obj.Edge.Props
	default:
		return value.Null, nil
	}
	if pv, ok := props[n.Property]; ok {
		return pv, nil
	}
	return value.Null, nil
}

func evalUnary(n *ast.Unary, row value.Row, ctx *Context) (value.Value, error) {
	v, err := Eval(n.Operand, row, ctx)
	if err != nil {
		return value.Null, err
	}
	switch n.Op {
	case "NOT":
		if v.IsNull() {
			return value.Null, nil
		}
		return value.Bool(!v.Bool), nil
	case "-":
		if v.IsNull() {
			return value.Null, nil
		}
		return value.Number(-v.Number), nil
	}
	return value.Null, nil
}

func evalBinary(n *ast.Binary, row value.Row, ctx *Context) (value.Value, error) {
	switch n.Op {
	case "AND":
		return evalAnd(n, row, ctx)
	case "OR":
		return evalOr(n, row, ctx)
	case "XOR":
		return evalXor(n, row, ctx)
	}

	left, err := Eval(n.Left, row, ctx)
	if err != nil {
		return value.Null, err
	}
	right, err := Eval(n.Right, row, ctx)
	if err != nil {
		return value.Null, err
	}

	switch n.Op {
	case "=", "<>", "<", "<=", ">", ">=":
		return evalComparison(n.Op, left, right), nil
	case "+", "-", "*", "/", "%":
		return evalArithmetic(n.Op, left, right), nil
	}
	return value.Null, nil
}

// evalAnd implements Kleene three-valued AND: FALSE dominates even when the
// other operand is NULL.
func evalAnd(n *ast.Binary, row value.Row, ctx *Context) (value.Value, error) {
	left, err := Eval(n.Left, row, ctx)
	if err != nil {
		return value.Null, err
	}
	if left.Kind == value.BoolKind && !left.Bool {
		return value.Bool(false), nil
	}
	right, err := Eval(n.Right, row, ctx)
	if err != nil {
		return value.Null, err
	}
	if right.Kind == value.BoolKind && !right.Bool {
		return value.Bool(false), nil
	}
	if left.IsNull() || right.IsNull() {
		return value.Null, nil
	}
	return value.Bool(left.Bool && right.Bool), nil
}

// evalOr implements Kleene three-valued OR: TRUE dominates even when the
// other operand is NULL.
func evalOr(n *ast.Binary, row value.Row, ctx *Context) (value.Value, error) {
	left, err := Eval(n.Left, row, ctx)
	if err != nil {
		return value.Null, err
	}
	if left.Kind == value.BoolKind && left.Bool {
		return value.Bool(true), nil
	}
	right, err := Eval(n.Right, row, ctx)
	if err != nil {
		return value.Null, err
	}
	if right.Kind == value.BoolKind && right.Bool {
		return value.Bool(true), nil
	}
	if left.IsNull() || right.IsNull() {
		return value.Null, nil
	}
	return value.Bool(left.Bool || right.Bool), nil
}

// evalXor has no short-circuit dominance: any NULL operand makes the whole
// expression NULL.
func evalXor(n *ast.Binary, row value.Row, ctx *Context) (value.Value, error) {
	left, err := Eval(n.Left, row, ctx)
	if err != nil {
		return value.Null, err
	}
	right, err := Eval(n.Right, row, ctx)
	if err != nil {
		return value.Null, err
	}
	if left.IsNull() || right.IsNull() {
		return value.Null, nil
	}
	return value.Bool(left.Bool != right.Bool), nil
}

func evalComparison(op string, left, right value.Value) value.Value {
	if left.IsNull() || right.IsNull() {
		return value.Null
	}
	if op == "=" {
		return value.Bool(left.Equal(right))
	}
	if op == "<>" {
		return value.Bool(!left.Equal(right))
	}
	cmp, ok := value.Compare(left, right)
	if !ok {
		return value.Null
	}
	switch op {
	case "<":
		return value.Bool(cmp < 0)
	case "<=":
		return value.Bool(cmp <= 0)
	case ">":
		return value.Bool(cmp > 0)
	case ">=":
		return value.Bool(cmp >= 0)
	}
	return value.Null
}

func evalArithmetic(op string, left, right value.Value) value.Value {
	if left.IsNull() || right.IsNull() {
		return value.Null
	}
	if left.Kind != value.NumberKind || right.Kind != value.NumberKind {
		return value.Null
	}
	switch op {
	case "+":
		return value.Number(left.Number + right.Number)
	case "-":
		return value.Number(left.Number - right.Number)
	case "*":
		return value.Number(left.Number * right.Number)
	case "/":
		if right.Number == 0 {
			return value.Null
		}
		return value.Number(left.Number / right.Number)
	case "%":
		if right.Number == 0 {
			return value.Null
		}
		return value.Number(float64(int64(left.Number) % int64(right.Number)))
	}
	return value.Null
}

func evalLike(n *ast.Like, row value.Row, ctx *Context) (value.Value, error) {
	v, err := Eval(n.Value, row, ctx)
	if err != nil {
		return value.Null, err
	}
	pat, err := Eval(n.Pattern, row, ctx)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() || pat.IsNull() {
		return value.Null, nil
	}
	match := likeMatch(v.Str, pat.Str)
	if n.Negate {
		match = !match
	}
	return value.Bool(match), nil
}

// likeMatch implements SQL LIKE with % and _ wildcards.
func likeMatch(s, pattern string) bool {
	return likeMatchRunes([]rune(s), []rune(pattern))
}

func likeMatchRunes(s, p []rune) bool {
	if len(p) == 0 {
		return len(s) == 0
	}
	switch p[0] {
	case '%':
		for i := 0; i <= len(s); i++ {
			if likeMatchRunes(s[i:], p[1:]) {
				return true
			}
		}
		return false
	case '_':
		if len(s) == 0 {
			return false
		}
		return likeMatchRunes(s[1:], p[1:])
	default:
		if len(s) == 0 || s[0] != p[0] {
			return false
		}
		return likeMatchRunes(s[1:], p[1:])
	}
}

func evalFunctionCall(n *ast.FunctionCall, row value.Row, ctx *Context) (value.Value, error) {
	if function.IsAggregate(n.Name) {
		// Aggregates are folded by HashAggregate before
		// reaching expression evaluation; if one appears here the row is
		// already a grouped row where the aggregate was materialised under
		// the function's rendered alias.
		if v, ok := row.Get(renderCallName(n)); ok {
			return v, nil
		}
		return value.Null, nil
	}
	fn, ok := function.LookupScalar(n.Name)
	if !ok {
		return value.Null, function.ErrUnknownFunction.New(n.Name)
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(a, row, ctx)
		if err != nil {
			return value.Null, err
		}
		args[i] = v
	}
	return fn(args)
}

// renderCallName is the canonical textual form HashAggregate uses as a
// row key for an unaliased aggregate projection item.
func renderCallName(n *ast.FunctionCall) string {
	var b strings.Builder
	b.WriteString(n.Name)
	b.WriteByte('(')
	if n.Star {
		b.WriteByte('*')
	}
	b.WriteByte(')')
	return b.String()
}

func evalCase(n *ast.CaseExpr, row value.Row, ctx *Context) (value.Value, error) {
	var operand value.Value
	if n.Operand != nil {
		v, err := Eval(n.Operand, row, ctx)
		if err != nil {
			return value.Null, err
		}
		operand = v
	}
	for _, w := range n.Whens {
		if n.Operand != nil {
			cv, err := Eval(w.Cond, row, ctx)
			if err != nil {
				return value.Null, err
			}
			if operand.Equal(cv) {
				return Eval(w.Result, row, ctx)
			}
			continue
		}
		cond, err := Eval(w.Cond, row, ctx)
		if err != nil {
			return value.Null, err
		}
		if cond.IsTrue() {
			return Eval(w.Result, row, ctx)
		}
	}
	if n.Else != nil {
		return Eval(n.Else, row, ctx)
	}
	return value.Null, nil
}

func evalCast(n *ast.CastExpr, row value.Row, ctx *Context) (value.Value, error) {
	v, err := Eval(n.Value, row, ctx)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() {
		return value.Null, nil
	}
	switch strings.ToUpper(n.Type) {
	case "STRING":
		return value.Str(renderAsString(v)), nil
	case "NUMBER", "FLOAT", "INT", "INTEGER":
		if v.Kind == value.NumberKind {
			return v, nil
		}
		return value.Null, nil
	case "BOOLEAN", "BOOL":
		if v.Kind == value.BoolKind {
			return v, nil
		}
		return value.Null, nil
	}
	return value.Null, nil
}

func renderAsString(v value.Value) string {
	switch v.Kind {
	case value.StringKind:
		return v.Str
	default:
		return v.Signature()
	}
}

func evalPathConstructor(n *ast.PathConstructor, row value.Row, ctx *Context) (value.Value, error) {
	var p value.Path
	for _, el := range n.Elements {
		v, err := Eval(el, row, ctx)
		if err != nil {
			return value.Null, err
		}
		switch v.Kind {
		case value.NodeKind:
			p.Nodes = append(p.Nodes, *v.Node)
		case value.EdgeKind:
			p.Edges = append(p.Edges, *v.Edge)
		}
	}
	return value.FromPath(p), nil
}

func evalIn(n *ast.InExpr, row value.Row, ctx *Context) (value.Value, error) {
	left, err := Eval(n.Left, row, ctx)
	if err != nil {
		return value.Null, err
	}
	if left.IsNull() {
		return value.Null, nil
	}

	var found, sawNull bool
	if n.Subquery != nil {
		rows, cols, err := ctx.RunQuery(n.Subquery, row)
		if err != nil {
			return value.Null, err
		}
		if len(cols) > 0 {
			for _, r := range rows {
				v := r.Values[cols[0]]
				if v.IsNull() {
					sawNull = true
					continue
				}
				if left.Equal(v) {
					found = true
					break
				}
			}
		}
	} else {
		for _, item := range n.List {
			v, err := Eval(item, row, ctx)
			if err != nil {
				return value.Null, err
			}
			if v.IsNull() {
				sawNull = true
				continue
			}
			if left.Equal(v) {
				found = true
				break
			}
		}
	}

	switch {
	case found:
		return value.Bool(!n.Negate), nil
	case sawNull:
		return value.Null, nil
	default:
		return value.Bool(n.Negate), nil
	}
}

func evalIs(n *ast.IsExpr, row value.Row, ctx *Context) (value.Value, error) {
	v, err := Eval(n.Operand, row, ctx)
	if err != nil {
		return value.Null, err
	}
	var result bool
	switch n.Kind {
	case ast.IsNull:
		result = v.IsNull()
	case ast.IsTrue:
		result = v.Kind == value.BoolKind && v.Bool
	case ast.IsFalse:
		result = v.Kind == value.BoolKind && !v.Bool
	case ast.IsUnknown:
		result = v.IsNull()
	case ast.IsTyped:
		result = strings.EqualFold(v.TypeName(), n.Type)
	case ast.IsLabelPredicate:
		result = hasLabel(v, n.Label)
	case ast.IsDirected, ast.IsNormalized, ast.IsSource, ast.IsDestination:
		// Graph-topology predicates beyond single-value scope; treated as
		// structurally true for any bound node/edge value, false for NULL.
		result = !v.IsNull()
	}
	if n.Negate {
		result = !result
	}
	return value.Bool(result), nil
}

func hasLabel(v value.Value, label string) bool {
	switch v.Kind {
	case value.NodeKind:
		for _, l := range v.Node.Labels {
			if l == label {
				return true
			}
		}
	case value.EdgeKind:
		return v.Edge.Label == label
	}
	return false
}

func evalQuantified(n *ast.QuantifiedComparison, row value.Row, ctx *Context) (value.Value, error) {
	left, err := Eval(n.Left, row, ctx)
	if err != nil {
		return value.Null, err
	}
	rows, cols, err := ctx.RunQuery(n.Subquery, row)
	if err != nil {
		return value.Null, err
	}
	if len(cols) == 0 {
		return value.Null, nil
	}
	matchAny, matchAll := false, true
	for _, r := range rows {
		cmp := evalComparison(n.Op, left, r.Values[cols[0]])
		if cmp.IsTrue() {
			matchAny = true
		} else {
			matchAll = false
		}
	}
	switch n.Quantifier {
	case ast.QuantAll:
		return value.Bool(matchAll), nil
	default:
		return value.Bool(matchAny), nil
	}
}
