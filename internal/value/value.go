// Package value implements the tagged-value union that flows through
// expression evaluation and row construction.
package value

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Kind discriminates the Value variants.
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	DateTimeKind
	ListKind
	VectorKind
	NodeKind
	EdgeKind
	PathKind
)

// Node is a bound graph node value.
type Node struct {
	ID     string
	Labels []string
	Props  map[string]Value
}

// Edge is a bound graph edge value.
type Edge struct {
	ID    string
	From  string
	To    string
	Label string
	Props map[string]Value
}

// Path is an alternating node/edge sequence bound by a path traversal.
type Path struct {
	Nodes []Node
	Edges []Edge
}

// Value is the tagged union over null/bool/number/string/datetime/list/
// vector/node/edge/path.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Str    string
	Time   time.Time
	List   []Value
	Vector []float64
	Node   *Node
	Edge   *Edge
	Path   *Path
}

// Null is the canonical null value; nulls participate in three-valued logic.
var Null = Value{Kind: NullKind}

func Bool(b bool) Value          { return Value{Kind: BoolKind, Bool: b} }
func Number(f float64) Value     { return Value{Kind: NumberKind, Number: f} }
func Int(i int64) Value          { return Value{Kind: NumberKind, Number: float64(i)} }
func Str(s string) Value         { return Value{Kind: StringKind, Str: s} }
func DateTime(t time.Time) Value { return Value{Kind: DateTimeKind, Time: t} }
func List(items []Value) Value   { return Value{Kind: ListKind, List: items} }
func Vector(v []float64) Value   { return Value{Kind: VectorKind, Vector: v} }
func FromNode(n Node) Value      { return Value{Kind: NodeKind, Node: &n} }
func FromEdge(e Edge) Value      { return Value{Kind: EdgeKind, Edge: &e} }
func FromPath(p Path) Value      { return Value{Kind: PathKind, Path: &p} }

func (v Value) IsNull() bool { return v.Kind == NullKind }

// IsTrue reports whether v is boolean TRUE; used by WHERE / Filter, where NULL
// and FALSE both drop the row.
func (v Value) IsTrue() bool {
	return v.Kind == BoolKind && v.Bool
}

// Equal implements value equality used for DISTINCT, value-mode set
// operations, and equality comparisons. NULL equality is handled by the
// caller (it must yield NULL, not this boolean).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case NullKind:
		return true
	case BoolKind:
		return v.Bool == o.Bool
	case NumberKind:
		return v.Number == o.Number
	case StringKind:
		return v.Str == o.Str
	case DateTimeKind:
		return v.Time.Equal(o.Time)
	case ListKind:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	case VectorKind:
		if len(v.Vector) != len(o.Vector) {
			return false
		}
		for i := range v.Vector {
			if v.Vector[i] != o.Vector[i] {
				return false
			}
		}
		return true
	case NodeKind:
		return v.Node != nil && o.Node != nil && v.Node.ID == o.Node.ID
	case EdgeKind:
		return v.Edge != nil && o.Edge != nil && v.Edge.ID == o.Edge.ID
	case PathKind:
		return v.Signature() == o.Signature()
	}
	return false
}

// Signature is a stable string form used as a map key for DISTINCT, GROUP BY,
// and value-mode set-operation dedup.
func (v Value) Signature() string {
	var b strings.Builder
	v.writeSignature(&b)
	return b.String()
}

func (v Value) writeSignature(b *strings.Builder) {
	switch v.Kind {
	case NullKind:
		b.WriteString("null")
	case BoolKind:
		fmt.Fprintf(b, "bool:%v", v.Bool)
	case NumberKind:
		fmt.Fprintf(b, "num:%v", v.Number)
	case StringKind:
		fmt.Fprintf(b, "str:%q", v.Str)
	case DateTimeKind:
		fmt.Fprintf(b, "time:%d", v.Time.UnixNano())
	case ListKind:
		b.WriteString("list:[")
		for i, item := range v.List {
			if i > 0 {
				b.WriteByte(',')
			}
			item.writeSignature(b)
		}
		b.WriteByte(']')
	case VectorKind:
		fmt.Fprintf(b, "vec:%v", v.Vector)
	case NodeKind:
		fmt.Fprintf(b, "node:%s", v.Node.ID)
	case EdgeKind:
		fmt.Fprintf(b, "edge:%s", v.Edge.ID)
	case PathKind:
		b.WriteString("path:[")
		for i, n := range v.Path.Nodes {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(n.ID)
		}
		for _, e := range v.Path.Edges {
			b.WriteByte(',')
			b.WriteString(e.ID)
		}
		b.WriteByte(']')
	}
}

// TypeName returns the GQL-facing type name, used by IS TYPED and CAST
// diagnostics.
func (v Value) TypeName() string {
	switch v.Kind {
	case NullKind:
		return "NULL"
	case BoolKind:
		return "BOOLEAN"
	case NumberKind:
		return "NUMBER"
	case StringKind:
		return "STRING"
	case DateTimeKind:
		return "DATETIME"
	case ListKind:
		return "LIST"
	case VectorKind:
		return "VECTOR"
	case NodeKind:
		return "NODE"
	case EdgeKind:
		return "EDGE"
	case PathKind:
		return "PATH"
	default:
		return "UNKNOWN"
	}
}

// Compare orders two non-null values of the same comparable kind; ok is
// false if the values are not ordinally comparable (different types).
func Compare(a, b Value) (int, bool) {
	if a.Kind != b.Kind {
		return 0, false
	}
	switch a.Kind {
	case NumberKind:
		switch {
		case a.Number < b.Number:
			return -1, true
		case a.Number > b.Number:
			return 1, true
		default:
			return 0, true
		}
	case StringKind:
		return strings.Compare(a.Str, b.Str), true
	case BoolKind:
		if a.Bool == b.Bool {
			return 0, true
		}
		if !a.Bool {
			return -1, true
		}
		return 1, true
	case DateTimeKind:
		switch {
		case a.Time.Before(b.Time):
			return -1, true
		case a.Time.After(b.Time):
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

// SortValues stably sorts a slice of values ascending, NULLs first, with an
// ordering independent of the row-level ORDER BY implementation in
// internal/exec.
func SortValues(vals []Value) {
	sort.SliceStable(vals, func(i, j int) bool {
		a, b := vals[i], vals[j]
		if a.IsNull() != b.IsNull() {
			return a.IsNull()
		}
		if a.IsNull() {
			return false
		}
		c, ok := Compare(a, b)
		if !ok {
			return false
		}
		return c < 0
	})
}

// IsNaN reports whether a numeric value is NaN (division edge cases).
func (v Value) IsNaN() bool {
	return v.Kind == NumberKind && math.IsNaN(v.Number)
}
