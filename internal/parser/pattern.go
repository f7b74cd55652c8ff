package parser

import (
	"strconv"

	"github.com/ritamzico/gqlgraph/internal/ast"
)

// parsePathPattern parses `[id =] [path-type] element (element)*`. At least one
// node element must be present.
func (p *Parser) parsePathPattern() (*ast.PathPattern, error) {
	pp := &ast.PathPattern{}

	mark := p.c.mark()
	if name, ok := p.c.ident(); ok {
		p.c.advance()
		if p.c.eatPunct("=") {
			pp.Assign = name
		} else {
			p.c.reset(mark)
		}
	}

	switch {
	case p.c.eatKw("WALK"):
		pp.PathType = ast.Walk
	case p.c.eatKw("TRAIL"):
		pp.PathType = ast.Trail
	case p.c.kw("SIMPLE"):
		p.c.advance()
		p.c.eatKw("PATH")
		pp.PathType = ast.SimplePath
	case p.c.kw("ACYCLIC"):
		p.c.advance()
		p.c.eatKw("PATH")
		pp.PathType = ast.AcyclicPath
	}

	node, err := p.parsePatternNode()
	if err != nil {
		return nil, err
	}
	pp.Elements = append(pp.Elements, ast.PatternElement{Node: node})

	for p.canStartEdge() {
		edge, err := p.parsePatternEdge()
		if err != nil {
			return nil, err
		}
		pp.Elements = append(pp.Elements, ast.PatternElement{Edge: edge})

		nextNode, err := p.parsePatternNode()
		if err != nil {
			return nil, err
		}
		pp.Elements = append(pp.Elements, ast.PatternElement{Node: nextNode})
	}

	return pp, nil
}

func (p *Parser) canStartEdge() bool {
	return p.c.punct("-") || p.c.punct("->") || p.c.punct("<-") || p.c.punct("<->")
}

func (p *Parser) parsePatternNode() (*ast.PatternNode, error) {
	if err := p.c.expectPunct("("); err != nil {
		return nil, err
	}
	n := &ast.PatternNode{}
	if name, ok := p.c.ident(); ok {
		n.Variable = name
		p.c.advance()
	}
	for p.c.eatPunct(":") {
		label, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		n.Labels = append(n.Labels, label)
	}
	if p.c.eatPunct("{") {
		props, err := p.parsePropertyMap()
		if err != nil {
			return nil, err
		}
		n.Props = props
	}
	if err := p.c.expectPunct(")"); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *Parser) parsePatternEdge() (*ast.PatternEdge, error) {
	e := &ast.PatternEdge{}

	// Leading delimiter: "<-", the combined "<->", or a plain "-".
	leftArrow := false
	bothArrow := false
	switch {
	case p.c.eatPunct("<->"):
		bothArrow = true
	case p.c.eatPunct("<-"):
		leftArrow = true
	default:
		if !p.c.eatPunct("-") {
			return nil, ErrExpectedToken.New("- or <-")
		}
	}

	if p.c.eatPunct("[") {
		if name, ok := p.c.ident(); ok {
			e.Variable = name
			p.c.advance()
		}
		for p.c.eatPunct(":") {
			label, err := p.c.expectIdent()
			if err != nil {
				return nil, err
			}
			e.Labels = append(e.Labels, label)
		}
		if q, ok := p.tryParseQuantifier(); ok {
			e.Quantifier = q
		}
		if p.c.eatPunct("{") {
			props, err := p.parsePropertyMap()
			if err != nil {
				return nil, err
			}
			e.Props = props
		}
		if err := p.c.expectPunct("]"); err != nil {
			return nil, err
		}
	}

	if bothArrow {
		// `<->` already carries the full direction; no trailing delimiter.
		e.Direction = ast.DirBoth
		return e, nil
	}

	switch {
	case p.c.eatPunct("->"):
		if leftArrow {
			e.Direction = ast.DirBoth
		} else {
			e.Direction = ast.DirOutgoing
		}
	default:
		if !p.c.eatPunct("-") {
			return nil, ErrExpectedToken.New("- or ->")
		}
		if leftArrow {
			e.Direction = ast.DirIncoming
		} else {
			e.Direction = ast.DirUndirected
		}
	}

	return e, nil
}

func (p *Parser) tryParseQuantifier() (*ast.Quantifier, bool) {
	if p.c.eatPunct("?") {
		return &ast.Quantifier{Kind: ast.QuantOptional}, true
	}
	if !p.c.punct("{") {
		return nil, false
	}
	mark := p.c.mark()
	p.c.advance()
	n, hasN := p.eatInt()
	if p.c.eatPunct(",") {
		m, hasM := p.eatInt()
		if !p.c.eatPunct("}") {
			p.c.reset(mark)
			return nil, false
		}
		switch {
		case hasN && hasM:
			return &ast.Quantifier{Kind: ast.QuantRange, N: n, M: m}, true
		case hasN && !hasM:
			return &ast.Quantifier{Kind: ast.QuantAtLeast, N: n}, true
		case !hasN && hasM:
			return &ast.Quantifier{Kind: ast.QuantAtMost, N: m}, true
		}
		p.c.reset(mark)
		return nil, false
	}
	if hasN && p.c.eatPunct("}") {
		return &ast.Quantifier{Kind: ast.QuantExact, N: n}, true
	}
	p.c.reset(mark)
	return nil, false
}

func (p *Parser) eatInt() (int, bool) {
	t := p.c.peek()
	if t.Text == "" {
		return 0, false
	}
	n, err := strconv.Atoi(t.Text)
	if err != nil {
		return 0, false
	}
	p.c.advance()
	return n, true
}

func (p *Parser) parsePropertyMap() (map[string]ast.Expr, error) {
	props := map[string]ast.Expr{}
	if p.c.punct("}") {
		p.c.advance()
		return props, nil
	}
	for {
		key, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.c.expectPunct(":"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		props[key] = val
		if !p.c.eatPunct(",") {
			break
		}
	}
	if err := p.c.expectPunct("}"); err != nil {
		return nil, err
	}
	return props, nil
}
