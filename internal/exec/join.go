package exec

import (
	"github.com/ritamzico/gqlgraph/internal/ast"
	"github.com/ritamzico/gqlgraph/internal/value"
)

// JoinType is the join-type family NestedLoopJoin/HashJoin support.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinCross
	JoinLeftOuter
	JoinRightOuter
	JoinFullOuter
	JoinLeftSemi
	JoinLeftAnti
)

// Join cross-pairs rows from left and right; for each pair whose optional
// condition evaluates true, it merges value maps and entity ids (a nil
// condition accepts every pair, the Cross/unconditional case). RightOuter
// and FullOuter are approximated: RightOuter is the LeftOuter null-padding
// walk with sides swapped, and FullOuter is the LeftOuter walk followed by a
// separate pass that appends the unmatched right rows, rather than tracking
// both sides' unmatched rows through one shared pass. LeftAnti is
// LeftSemi's strict complement rather than a three-valued anti-join.
func Join(left, right []value.Row, jt JoinType, cond ast.Expr, ctx *Context) ([]value.Row, error) {
	switch jt {
	case JoinRightOuter:
		return joinLeftOuter(right, left, cond, ctx, true)
	case JoinFullOuter:
		out, err := joinLeftOuter(left, right, cond, ctx, false)
		if err != nil {
			return nil, err
		}
		rightOnly, err := unmatchedRightRows(left, right, cond, ctx)
		if err != nil {
			return nil, err
		}
		return append(out, rightOnly...), nil
	case JoinLeftOuter:
		return joinLeftOuter(left, right, cond, ctx, false)
	case JoinLeftSemi:
		return joinSemi(left, right, cond, ctx, false)
	case JoinLeftAnti:
		return joinSemi(left, right, cond, ctx, true)
	default: // JoinInner, JoinCross
		var out []value.Row
		for _, l := range left {
			for _, r := range right {
				ok, err := joinMatches(l, r, cond, ctx)
				if err != nil {
					return nil, err
				}
				if ok {
					out = append(out, l.Merge(r))
				}
			}
		}
		return out, nil
	}
}

func joinMatches(l, r value.Row, cond ast.Expr, ctx *Context) (bool, error) {
	if cond == nil {
		return true, nil
	}
	v, err := Eval(cond, l.Merge(r), ctx)
	if err != nil {
		return false, err
	}
	return v.IsTrue(), nil
}

// joinLeftOuter pairs every left row against matching right rows, keeping
// the bare left row (null-padded by omission) when nothing on the right
// matches. swapped reverses the merge order for RightOuter's reuse of this
// walk.
func joinLeftOuter(left, right []value.Row, cond ast.Expr, ctx *Context, swapped bool) ([]value.Row, error) {
	var out []value.Row
	for _, l := range left {
		matched := false
		for _, r := range right {
			ok, err := joinMatches(l, r, cond, ctx)
			if err != nil {
				return nil, err
			}
			if ok {
				matched = true
				if swapped {
					out = append(out, r.Merge(l))
				} else {
					out = append(out, l.Merge(r))
				}
			}
		}
		if !matched {
			out = append(out, l)
		}
	}
	return out, nil
}

func unmatchedRightRows(left, right []value.Row, cond ast.Expr, ctx *Context) ([]value.Row, error) {
	var out []value.Row
	for _, r := range right {
		matched := false
		for _, l := range left {
			ok, err := joinMatches(l, r, cond, ctx)
			if err != nil {
				return nil, err
			}
			if ok {
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, r)
		}
	}
	return out, nil
}

// joinSemi keeps a left row when some right row matches (LeftSemi) or when
// none does (LeftAnti), never merging columns from the right side.
func joinSemi(left, right []value.Row, cond ast.Expr, ctx *Context, anti bool) ([]value.Row, error) {
	var out []value.Row
	for _, l := range left {
		matched := false
		for _, r := range right {
			ok, err := joinMatches(l, r, cond, ctx)
			if err != nil {
				return nil, err
			}
			if ok {
				matched = true
				break
			}
		}
		if matched != anti {
			out = append(out, l)
		}
	}
	return out, nil
}
