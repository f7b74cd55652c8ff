package value

import "sort"

// SearchMeta carries text-search scoring metadata that rides along with a Row
// when the graph was queried through a text index.
type SearchMeta struct {
	Score     float64
	Highlight string
}

// Row is one tuple flowing between physical operators.
type Row struct {
	Values        map[string]Value
	Positional    []Value
	EntityIDs     map[string]string
	Search        *SearchMeta
	LastBoundNode string
}

// NewRow returns an empty, initialised row.
func NewRow() Row {
	return Row{Values: make(map[string]Value)}
}

// Clone returns a deep-enough copy: the Values/EntityIDs maps are copied so
// mutating one row's bindings never affects another row produced from the
// same parent (operators must not alias rows across branches).
func (r Row) Clone() Row {
	out := Row{
		Values:        make(map[string]Value, len(r.Values)),
		LastBoundNode: r.LastBoundNode,
	}
	for k, v := range r.Values {
		out.Values[k] = v
	}
	if r.EntityIDs != nil {
		out.EntityIDs = make(map[string]string, len(r.EntityIDs))
		for k, v := range r.EntityIDs {
			out.EntityIDs[k] = v
		}
	}
	if r.Positional != nil {
		out.Positional = append([]Value(nil), r.Positional...)
	}
	if r.Search != nil {
		s := *r.Search
		out.Search = &s
	}
	return out
}

// Get looks up a plain variable binding.
func (r Row) Get(name string) (Value, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// Set binds a variable to a value. Pointer receiver: it may initialise
// Values on a zero Row. Only Values is written; LastBoundNode and EntityIDs
// are left to the caller.
func (r *Row) Set(name string, v Value) {
	if r.Values == nil {
		r.Values = make(map[string]Value)
	}
	r.Values[name] = v
}

// BindNode binds a node variable, flattening its properties as `var.prop` and
// recording its entity id.
func (r *Row) BindNode(varName string, n Node) {
	if r.Values == nil {
		r.Values = make(map[string]Value)
	}
	r.Values[varName] = FromNode(n)
	for k, v := range n.Props {
		r.Values[varName+"."+k] = v
	}
	if r.EntityIDs == nil {
		r.EntityIDs = make(map[string]string)
	}
	r.EntityIDs[varName] = n.ID
	r.LastBoundNode = varName
}

// BindEdge binds an edge variable analogously to BindNode.
func (r *Row) BindEdge(varName string, e Edge) {
	if r.Values == nil {
		r.Values = make(map[string]Value)
	}
	r.Values[varName] = FromEdge(e)
	for k, v := range e.Props {
		r.Values[varName+"."+k] = v
	}
	if r.EntityIDs == nil {
		r.EntityIDs = make(map[string]string)
	}
	r.EntityIDs[varName] = e.ID
}

// Merge combines two rows (used by joins): values/entity-ids from `other`
// win on key collision, matching a natural-join-style merge.
func (r Row) Merge(other Row) Row {
	out := r.Clone()
	for k, v := range other.Values {
		out.Values[k] = v
	}
	if len(other.EntityIDs) > 0 {
		if out.EntityIDs == nil {
			out.EntityIDs = make(map[string]string)
		}
		for k, v := range other.EntityIDs {
			out.EntityIDs[k] = v
		}
	}
	if other.LastBoundNode != "" {
		out.LastBoundNode = other.LastBoundNode
	}
	return out
}

// ToPositional projects the row's Values onto the given ordered variable list,
// producing the positional array set operations align on.
func (r Row) ToPositional(vars []string) []Value {
	out := make([]Value, len(vars))
	for i, name := range vars {
		if v, ok := r.Values[name]; ok {
			out[i] = v
		} else {
			out[i] = Null
		}
	}
	return out
}

// EntitySignature returns a stable signature of the row's entity-id map, used
// by identity-mode set operations.
func (r Row) EntitySignature() string {
	if len(r.EntityIDs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(r.EntityIDs))
	for k := range r.EntityIDs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for _, k := range keys {
		out += k + "=" + r.EntityIDs[k] + ";"
	}
	return out
}

// PositionalSignature is the string signature of a positional value slice,
// used for value-mode set-operation dedup.
func PositionalSignature(vals []Value) string {
	out := ""
	for _, v := range vals {
		out += v.Signature() + "|"
	}
	return out
}

// HasNull reports whether any positional value is NULL.
func HasNull(vals []Value) bool {
	for _, v := range vals {
		if v.IsNull() {
			return true
		}
	}
	return false
}
