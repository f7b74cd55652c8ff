package parser

import (
	"strconv"
	"strings"

	"github.com/ritamzico/gqlgraph/internal/ast"
	"github.com/ritamzico/gqlgraph/internal/lexer"
	"github.com/ritamzico/gqlgraph/internal/value"
)

// parseExpr is the precedence-climbing entry point: OR ▸ XOR ▸ AND ▸ NOT ▸
// comparison ▸ additive ▸ multiplicative ▸ postfix ▸ primary.
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseXor()
	if err != nil {
		return nil, err
	}
	for p.c.eatKw("OR") {
		right, err := p.parseXor()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseXor() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.c.eatKw("XOR") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: "XOR", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.c.eatKw("AND") {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (ast.Expr, error) {
	if p.c.eatKw("NOT") {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: "NOT", Operand: operand}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[string]string{
	"=": "=", "<>": "<>", "!=": "<>",
	"<": "<", "<=": "<=", ">": ">", ">=": ">=",
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	switch {
	case p.c.eatKw("NOT"):
		return p.parseNegatedPredicate(left)
	case p.c.kw("IN"):
		return p.parseIn(left, false)
	case p.c.kw("LIKE"):
		return p.parseLike(left, false)
	case p.c.kw("IS"):
		return p.parseIs(left)
	}

	if op, ok := p.matchCompareOp(); ok {
		return p.parseRHSOfComparison(left, op)
	}

	return left, nil
}

func (p *Parser) parseNegatedPredicate(left ast.Expr) (ast.Expr, error) {
	switch {
	case p.c.kw("IN"):
		return p.parseIn(left, true)
	case p.c.kw("LIKE"):
		return p.parseLike(left, true)
	default:
		return nil, ErrExpectedToken.New("IN or LIKE after NOT")
	}
}

func (p *Parser) matchCompareOp() (string, bool) {
	t := p.c.peek()
	if t.Kind != lexer.Punct && t.Kind != lexer.Direction {
		return "", false
	}
	switch t.Text {
	case "=":
		p.c.advance()
		return "=", true
	case "<":
		p.c.advance()
		if p.c.punct(">") {
			p.c.advance()
			return "<>", true
		}
		if p.c.punct("=") {
			p.c.advance()
			return "<=", true
		}
		return "<", true
	case ">":
		p.c.advance()
		if p.c.punct("=") {
			p.c.advance()
			return ">=", true
		}
		return ">", true
	case "!":
		p.c.advance()
		if p.c.punct("=") {
			p.c.advance()
			return "<>", true
		}
		return "", false
	}
	return "", false
}

// parseRHSOfComparison handles a quantified comparison (op ALL|ANY|SOME
// (subquery)) as well as the plain binary form.
func (p *Parser) parseRHSOfComparison(left ast.Expr, op string) (ast.Expr, error) {
	var quant ast.QuantifierWord
	hasQuant := true
	switch {
	case p.c.eatKw("ALL"):
		quant = ast.QuantAll
	case p.c.eatKw("ANY"):
		quant = ast.QuantAny
	case p.c.eatKw("SOME"):
		quant = ast.QuantSome
	default:
		hasQuant = false
	}
	if hasQuant {
		if err := p.c.expectPunct("("); err != nil {
			return nil, err
		}
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if err := p.c.expectPunct(")"); err != nil {
			return nil, err
		}
		return &ast.QuantifiedComparison{Op: op, Quantifier: quant, Left: left, Subquery: q}, nil
	}

	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &ast.Binary{Op: op, Left: left, Right: right}, nil
}

func (p *Parser) parseIn(left ast.Expr, negate bool) (ast.Expr, error) {
	p.c.advance() // IN
	if err := p.c.expectPunct("("); err != nil {
		return nil, err
	}
	mark := p.c.mark()
	if q, err := p.parseQuery(); err == nil {
		if p.c.eatPunct(")") {
			return &ast.InExpr{Left: left, Subquery: q, Negate: negate}, nil
		}
	}
	p.c.reset(mark)

	var items []ast.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, e)
		if !p.c.eatPunct(",") {
			break
		}
	}
	if err := p.c.expectPunct(")"); err != nil {
		return nil, err
	}
	return &ast.InExpr{Left: left, List: items, Negate: negate}, nil
}

func (p *Parser) parseLike(left ast.Expr, negate bool) (ast.Expr, error) {
	p.c.advance() // LIKE
	pattern, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &ast.Like{Value: left, Pattern: pattern, Negate: negate}, nil
}

func (p *Parser) parseIs(left ast.Expr) (ast.Expr, error) {
	p.c.advance() // IS
	negate := p.c.eatKw("NOT")

	switch {
	case p.c.eatKw("NULL"):
		return &ast.IsExpr{Operand: left, Kind: ast.IsNull, Negate: negate}, nil
	case p.c.eatKw("TRUE"):
		return &ast.IsExpr{Operand: left, Kind: ast.IsTrue, Negate: negate}, nil
	case p.c.eatKw("FALSE"):
		return &ast.IsExpr{Operand: left, Kind: ast.IsFalse, Negate: negate}, nil
	case p.c.eatKw("UNKNOWN"):
		return &ast.IsExpr{Operand: left, Kind: ast.IsUnknown, Negate: negate}, nil
	case p.c.eatKw("NORMALIZED"):
		return &ast.IsExpr{Operand: left, Kind: ast.IsNormalized, Negate: negate}, nil
	case p.c.eatKw("DIRECTED"):
		return &ast.IsExpr{Operand: left, Kind: ast.IsDirected, Negate: negate}, nil
	case p.c.eatKw("SOURCE"):
		return &ast.IsExpr{Operand: left, Kind: ast.IsSource, Negate: negate}, nil
	case p.c.eatKw("DESTINATION"):
		return &ast.IsExpr{Operand: left, Kind: ast.IsDestination, Negate: negate}, nil
	case p.c.eatKw("TYPED"):
		typ, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.IsExpr{Operand: left, Kind: ast.IsTyped, Type: typ, Negate: negate}, nil
	case p.c.eatKw("LABEL"):
		label, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.IsExpr{Operand: left, Kind: ast.IsLabelPredicate, Label: label, Negate: negate}, nil
	}
	return nil, ErrExpectedToken.New("IS predicate")
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.c.punct("+") || p.c.punct("-") {
		op := p.c.advance().Text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.c.punct("*") || p.c.punct("/") || p.c.punct("%") {
		op := p.c.advance().Text
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.c.eatPunct("."):
			name, err := p.c.expectIdent()
			if err != nil {
				return nil, err
			}
			expr = &ast.PropertyAccess{Object: expr, Property: name}
		case p.c.eatPunct("["):
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.c.expectPunct("]"); err != nil {
				return nil, err
			}
			expr = &ast.IndexAccess{Object: expr, Index: idx}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	t := p.c.peek()

	switch {
	case p.c.punct("-"):
		p.c.advance()
		operand, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: "-", Operand: operand}, nil

	case p.c.eatKw("NULL"):
		return &ast.Literal{Value: value.Null}, nil
	case p.c.eatKw("TRUE"):
		return &ast.Literal{Value: value.Bool(true)}, nil
	case p.c.eatKw("FALSE"):
		return &ast.Literal{Value: value.Bool(false)}, nil

	case t.Kind == lexer.Int:
		p.c.advance()
		n, _ := strconv.ParseInt(t.Text, 10, 64)
		return &ast.Literal{Value: value.Int(n)}, nil
	case t.Kind == lexer.Float:
		p.c.advance()
		f, _ := strconv.ParseFloat(t.Text, 64)
		return &ast.Literal{Value: value.Number(f)}, nil
	case t.Kind == lexer.String:
		p.c.advance()
		return &ast.Literal{Value: value.Str(decodeStringLiteral(t.Text))}, nil
	case t.Kind == lexer.Param:
		p.c.advance()
		return &ast.Parameter{Name: strings.TrimPrefix(t.Text, "$")}, nil

	case p.c.eatKw("CASE"):
		return p.parseCase()
	case p.c.eatKw("CAST"):
		return p.parseCast()
	case p.c.kw("EXISTS"):
		return p.parseExists()
	case p.c.kw("COUNT"), p.c.kw("SUM"), p.c.kw("AVG"), p.c.kw("MIN"), p.c.kw("MAX"), p.c.kw("COLLECT"):
		return p.parseFunctionCall(t.Text)

	case p.c.eatPunct("["):
		return p.parseListLiteral()

	case p.c.eatPunct("("):
		mark := p.c.mark()
		if q, err := p.parseQuery(); err == nil && p.c.eatPunct(")") {
			return &ast.SubqueryExpr{Query: q}, nil
		}
		p.c.reset(mark)
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.c.expectPunct(")"); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		if name, ok := p.c.ident(); ok {
			p.c.advance()
			if p.c.eatPunct("(") {
				return p.parseFunctionArgs(name, false)
			}
			if p.c.eatPunct(":") {
				label, err := p.c.expectIdent()
				if err != nil {
					return nil, err
				}
				return &ast.IsExpr{Operand: &ast.Variable{Name: name}, Kind: ast.IsLabelPredicate, Label: label}, nil
			}
			return &ast.Variable{Name: name}, nil
		}
	}

	return nil, unexpectedErr(t)
}

func (p *Parser) parseFunctionCall(name string) (ast.Expr, error) {
	p.c.advance()
	if err := p.c.expectPunct("("); err != nil {
		return nil, err
	}
	return p.parseFunctionArgs(name, true)
}

func (p *Parser) parseFunctionArgs(name string, upperName bool) (ast.Expr, error) {
	if upperName {
		name = strings.ToUpper(name)
	}
	call := &ast.FunctionCall{Name: name}
	if p.c.eatPunct("*") {
		call.Star = true
		if err := p.c.expectPunct(")"); err != nil {
			return nil, err
		}
		return call, nil
	}
	call.Distinct = p.c.eatKw("DISTINCT")
	if !p.c.punct(")") {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if !p.c.eatPunct(",") {
				break
			}
		}
	}
	if err := p.c.expectPunct(")"); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parseListLiteral() (ast.Expr, error) {
	lst := &ast.ListExpr{}
	if !p.c.punct("]") {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			lst.Items = append(lst.Items, e)
			if !p.c.eatPunct(",") {
				break
			}
		}
	}
	if err := p.c.expectPunct("]"); err != nil {
		return nil, err
	}
	return lst, nil
}

func (p *Parser) parseCase() (ast.Expr, error) {
	ce := &ast.CaseExpr{}
	if !p.c.kw("WHEN") {
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ce.Operand = operand
	}
	for p.c.eatKw("WHEN") {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.c.expectKw("THEN"); err != nil {
			return nil, err
		}
		result, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ce.Whens = append(ce.Whens, ast.WhenClause{Cond: cond, Result: result})
	}
	if p.c.eatKw("ELSE") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ce.Else = e
	}
	if err := p.c.expectKw("END"); err != nil {
		return nil, err
	}
	return ce, nil
}

func (p *Parser) parseCast() (ast.Expr, error) {
	if err := p.c.expectPunct("("); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.c.expectKw("AS"); err != nil {
		return nil, err
	}
	typ, err := p.c.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.c.expectPunct(")"); err != nil {
		return nil, err
	}
	return &ast.CastExpr{Value: val, Type: typ}, nil
}

func (p *Parser) parseExists() (ast.Expr, error) {
	p.c.advance() // EXISTS
	if err := p.c.expectPunct("("); err != nil {
		return nil, err
	}
	mark := p.c.mark()
	if q, err := p.parseQuery(); err == nil {
		if p.c.eatPunct(")") {
			return &ast.ExistsExpr{Query: q}, nil
		}
	}
	p.c.reset(mark)
	pattern, err := p.parsePathPattern()
	if err != nil {
		return nil, err
	}
	if err := p.c.expectPunct(")"); err != nil {
		return nil, err
	}
	return &ast.ExistsExpr{Query: &ast.BasicQuery{
		Matches: []ast.MatchClause{{Patterns: []*ast.PathPattern{pattern}}},
	}}, nil
}

func decodeStringLiteral(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(body[i])
			}
			continue
		}
		b.WriteByte(body[i])
	}
	return b.String()
}
