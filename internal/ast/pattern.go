package ast

// PathType constrains a path pattern's traversal.
type PathType int

const (
	NoPathType PathType = iota
	Walk
	Trail
	SimplePath
	AcyclicPath
)

// EdgeDirection is one of the four direction markers.
type EdgeDirection int

const (
	DirOutgoing EdgeDirection = iota
	DirIncoming
	DirBoth
	DirUndirected
)

// QuantifierKind enumerates edge repetition quantifiers.
type QuantifierKind int

const (
	NoQuantifier QuantifierKind = iota
	QuantOptional
	QuantExact
	QuantRange
	QuantAtLeast
	QuantAtMost
)

// Quantifier is an edge repetition constraint; only the fields relevant to
// Kind are populated.
type Quantifier struct {
	Kind QuantifierKind
	N    int
	M    int
}

// PatternNode is a node element of a path pattern.
type PatternNode struct {
	Variable string
	Labels   []string
	Props    map[string]Expr
}

// PatternEdge is an edge element of a path pattern.
type PatternEdge struct {
	Variable   string
	Labels     []string
	Props      map[string]Expr
	Direction  EdgeDirection
	Quantifier *Quantifier
}

// PatternElement is either a node or an edge; exactly one of Node/Edge is non-
// nil.
type PatternElement struct {
	Node *PatternNode
	Edge *PatternEdge
}

// PathPattern is `[id =] [path-type] element (element)*`.
type PathPattern struct {
	Assign   string
	PathType PathType
	Elements []PatternElement
}

// Nodes returns the pattern's node elements in order.
func (p *PathPattern) Nodes() []*PatternNode {
	var out []*PatternNode
	for _, e := range p.Elements {
		if e.Node != nil {
			out = append(out, e.Node)
		}
	}
	return out
}

// Edges returns the pattern's edge elements in order.
func (p *PathPattern) Edges() []*PatternEdge {
	var out []*PatternEdge
	for _, e := range p.Elements {
		if e.Edge != nil {
			out = append(out, e.Edge)
		}
	}
	return out
}
