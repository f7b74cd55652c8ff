package parser

import "github.com/ritamzico/gqlgraph/internal/ast"

// parseQuery is the query-shape entry point: set operations wrap query terms,
// which wrap the core match/let/for/filter/unwind/return forms.
func (p *Parser) parseQuery() (ast.Query, error) {
	return p.parseSetOperation()
}

func (p *Parser) parseSetOperation() (ast.Query, error) {
	left, err := p.parseQueryTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.c.eatKw("UNION"):
			all := p.c.eatKw("ALL")
			right, err := p.parseQueryTerm()
			if err != nil {
				return nil, ErrIncompleteUnion.New()
			}
			left = &ast.SetOperationQuery{Left: left, Op: ast.Union, All: all, Right: right}
		case p.c.eatKw("EXCEPT"):
			all := p.c.eatKw("ALL")
			right, err := p.parseQueryTerm()
			if err != nil {
				return nil, ErrIncompleteExcept.New()
			}
			left = &ast.SetOperationQuery{Left: left, Op: ast.Except, All: all, Right: right}
		case p.c.eatKw("INTERSECT"):
			all := p.c.eatKw("ALL")
			right, err := p.parseQueryTerm()
			if err != nil {
				return nil, ErrIncompleteIntersect.New()
			}
			left = &ast.SetOperationQuery{Left: left, Op: ast.Intersect, All: all, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseQueryTerm() (ast.Query, error) {
	if p.c.punct("(") {
		mark := p.c.mark()
		p.c.advance()
		inner, err := p.parseSetOperation()
		if err == nil && p.c.eatPunct(")") {
			return p.wrapModifiers(inner)
		}
		p.c.reset(mark)
	}
	core, err := p.parseQueryCore()
	if err != nil {
		return nil, err
	}
	return core, nil
}

// wrapModifiers attaches a trailing ORDER BY/LIMIT/OFFSET to an already parsed
// query, producing a LimitedQuery.
func (p *Parser) wrapModifiers(inner ast.Query) (ast.Query, error) {
	order, limit, offset, err := p.parseTrailingModifiers()
	if err != nil {
		return nil, err
	}
	if order == nil && limit == nil && offset == nil {
		return inner, nil
	}
	return &ast.LimitedQuery{Inner: inner, OrderBy: order, Limit: limit, Offset: offset}, nil
}

func (p *Parser) parseTrailingModifiers() ([]ast.OrderItem, ast.Expr, ast.Expr, error) {
	var order []ast.OrderItem
	var limit, offset ast.Expr
	var err error
	if p.c.kw("ORDER") {
		order, err = p.parseOrderBy()
		if err != nil {
			return nil, nil, nil, err
		}
	}
	if p.c.eatKw("LIMIT") {
		limit, err = p.parseExpr()
		if err != nil {
			return nil, nil, nil, err
		}
	}
	if p.c.eatKw("OFFSET") {
		offset, err = p.parseExpr()
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return order, limit, offset, nil
}

func (p *Parser) parseOrderBy() ([]ast.OrderItem, error) {
	if err := p.c.expectKw("ORDER"); err != nil {
		return nil, err
	}
	if err := p.c.expectKw("BY"); err != nil {
		return nil, err
	}
	var items []ast.OrderItem
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		item := ast.OrderItem{Expr: e}
		if p.c.eatKw("ASC") {
			// default
		} else if p.c.eatKw("DESC") {
			item.Descending = true
		}
		if p.c.eatKw("NULLS") {
			if p.c.eatKw("FIRST") {
				t := true
				item.NullsFirst = &t
			} else if p.c.eatKw("LAST") {
				f := false
				item.NullsFirst = &f
			}
		}
		items = append(items, item)
		if !p.c.eatPunct(",") {
			break
		}
	}
	return items, nil
}

// parseQueryCore dispatches on the leading keyword of the non-parenthesised,
// non-set-operation query forms.
func (p *Parser) parseQueryCore() (ast.Query, error) {
	switch {
	case p.c.kw("LET"):
		return p.parseLetQuery()
	case p.c.kw("FOR"):
		return p.parseForQuery()
	case p.c.kw("FILTER"):
		return p.parseFilterQuery()
	case p.c.kw("UNWIND"):
		return p.parseUnwindQuery()
	case p.c.kw("MATCH") || p.c.kw("OPTIONAL"):
		return p.parseMatchLed()
	case p.c.kw("RETURN"):
		rc, err := p.parseReturnClause()
		if err != nil {
			return nil, err
		}
		roq := &ast.ReturnOnlyQuery{Return: rc}
		return p.wrapModifiers(roq)
	default:
		return nil, unexpectedErr(p.c.peek())
	}
}

func (p *Parser) parseLetQuery() (ast.Query, error) {
	if err := p.c.expectKw("LET"); err != nil {
		return nil, err
	}
	bindings, err := p.parseLetBindings()
	if err != nil {
		return nil, err
	}
	next, err := p.parseQueryCore()
	if err != nil {
		return nil, err
	}
	return &ast.LetQuery{Bindings: bindings, Next: next}, nil
}

func (p *Parser) parseLetBindings() ([]ast.LetBinding, error) {
	var out []ast.LetBinding
	for {
		name, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.c.expectPunct("="); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, ast.LetBinding{Name: name, Expr: e})
		if !p.c.eatPunct(",") {
			break
		}
	}
	return out, nil
}

func (p *Parser) parseForQuery() (ast.Query, error) {
	if err := p.c.expectKw("FOR"); err != nil {
		return nil, err
	}
	variable, err := p.c.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.c.expectKw("IN"); err != nil {
		return nil, err
	}
	source, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	next, err := p.parseQueryCore()
	if err != nil {
		return nil, err
	}
	return &ast.ForQuery{Variable: variable, Source: source, Next: next}, nil
}

func (p *Parser) parseFilterQuery() (ast.Query, error) {
	if err := p.c.expectKw("FILTER"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	next, err := p.parseQueryCore()
	if err != nil {
		return nil, err
	}
	return &ast.FilterQuery{Condition: cond, Next: next}, nil
}

func (p *Parser) parseUnwindClause() (*ast.UnwindClause, error) {
	if err := p.c.expectKw("UNWIND"); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.c.expectKw("AS"); err != nil {
		return nil, err
	}
	name, err := p.c.expectIdent()
	if err != nil {
		return nil, err
	}
	return &ast.UnwindClause{Expr: e, Variable: name}, nil
}

func (p *Parser) parseUnwindQuery() (ast.Query, error) {
	uc, err := p.parseUnwindClause()
	if err != nil {
		return nil, err
	}
	next, err := p.parseQueryCore()
	if err != nil {
		return nil, err
	}
	return &ast.UnwindQuery{Unwind: *uc, Next: next}, nil
}

func (p *Parser) parseMatchClause() (ast.MatchClause, error) {
	var mc ast.MatchClause
	mc.Optional = p.c.eatKw("OPTIONAL")
	if err := p.c.expectKw("MATCH"); err != nil {
		return mc, err
	}
	for {
		pp, err := p.parsePathPattern()
		if err != nil {
			return mc, err
		}
		mc.Patterns = append(mc.Patterns, pp)
		if !p.c.eatPunct(",") {
			break
		}
	}
	return mc, nil
}

// parseMatchLed handles every form that begins with one or more MATCH clauses:
// a terminal BasicQuery, a WITH pipeline, or a mutation pipeline.
func (p *Parser) parseMatchLed() (ast.Query, error) {
	var segments []ast.WithSegment

	for {
		seg, more, err := p.parseSegment()
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
		if !more {
			break
		}
	}

	switch {
	case p.c.kw("SET") || p.c.kw("REMOVE") || p.c.kw("DELETE") || p.c.kw("DETACH") || p.c.kw("NODETACH") || p.c.kw("INSERT"):
		mut, err := p.parseMutationOp()
		if err != nil {
			return nil, err
		}
		return &ast.MutationPipeline{Segments: segments, Mutation: mut}, nil
	case p.c.kw("RETURN"):
		rc, err := p.parseReturnClause()
		if err != nil {
			return nil, err
		}
		groupBy, having, err := p.parseGroupHaving()
		if err != nil {
			return nil, err
		}
		order, limit, offset, err := p.parseTrailingModifiers()
		if err != nil {
			return nil, err
		}
		if len(segments) == 1 && segments[0].With == nil && segments[0].Unwind == nil {
			seg := segments[0]
			return &ast.BasicQuery{
				Matches: []ast.MatchClause{seg.Match},
				Where:   seg.PreWhere,
				Return:  rc,
				GroupBy: groupBy,
				Having:  having,
				OrderBy: order,
				Limit:   limit,
				Offset:  offset,
			}, nil
		}
		return &ast.WithQuery{Segments: segments, Return: rc, OrderBy: order, Limit: limit, Offset: offset}, nil
	default:
		return nil, ErrExpectedToken.New("RETURN, INSERT, SET, REMOVE, or DELETE")
	}
}

// parseGroupHaving parses the optional GROUP BY/HAVING trailer that follows a
// RETURN projection list.
func (p *Parser) parseGroupHaving() ([]ast.Expr, ast.Expr, error) {
	var groupBy []ast.Expr
	var having ast.Expr
	if p.c.kw("GROUP") {
		p.c.advance()
		if err := p.c.expectKw("BY"); err != nil {
			return nil, nil, err
		}
		items, err := p.parseExprList()
		if err != nil {
			return nil, nil, err
		}
		groupBy = items
	}
	if p.c.eatKw("HAVING") {
		h, err := p.parseExpr()
		if err != nil {
			return nil, nil, err
		}
		having = h
	}
	return groupBy, having, nil
}

// parseSegment parses one MATCH/[WHERE]/[WITH/[UNWIND]/[WHERE]] stage and
// reports whether another MATCH-led segment follows.
func (p *Parser) parseSegment() (ast.WithSegment, bool, error) {
	var seg ast.WithSegment
	mc, err := p.parseMatchClause()
	if err != nil {
		return seg, false, err
	}
	seg.Match = mc

	if p.c.eatKw("WHERE") {
		w, err := p.parseExpr()
		if err != nil {
			return seg, false, err
		}
		seg.PreWhere = w
	}

	if !p.c.kw("WITH") {
		return seg, false, nil
	}
	p.c.advance()
	wc, err := p.parseProjectionList()
	if err != nil {
		return seg, false, err
	}
	seg.With = wc

	if p.c.kw("UNWIND") {
		uc, err := p.parseUnwindClause()
		if err != nil {
			return seg, false, err
		}
		seg.Unwind = uc
	}

	if p.c.eatKw("WHERE") {
		w, err := p.parseExpr()
		if err != nil {
			return seg, false, err
		}
		seg.PostWhere = w
	}

	return seg, p.c.kw("MATCH") || p.c.kw("OPTIONAL"), nil
}

func (p *Parser) parseProjectionList() (*ast.WithClause, error) {
	wc := &ast.WithClause{Distinct: p.c.eatKw("DISTINCT")}
	for {
		item, err := p.parseProjectionItem()
		if err != nil {
			return nil, err
		}
		wc.Items = append(wc.Items, item)
		if !p.c.eatPunct(",") {
			break
		}
	}
	return wc, nil
}

func (p *Parser) parseProjectionItem() (ast.ProjectionItem, error) {
	if p.c.eatPunct("*") {
		return ast.ProjectionItem{Star: true}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return ast.ProjectionItem{}, err
	}
	item := ast.ProjectionItem{Expr: e}
	if p.c.eatKw("AS") {
		alias, err := p.c.expectIdent()
		if err != nil {
			return item, err
		}
		item.Alias = alias
	}
	return item, nil
}

func (p *Parser) parseReturnClause() (*ast.ReturnClause, error) {
	if err := p.c.expectKw("RETURN"); err != nil {
		return nil, err
	}
	distinct := p.c.eatKw("DISTINCT")
	var items []ast.ProjectionItem
	for {
		item, err := p.parseProjectionItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.c.eatPunct(",") {
			break
		}
	}
	return &ast.ReturnClause{Items: items, Distinct: distinct}, nil
}

func (p *Parser) parseMutationOp() (ast.MutationOp, error) {
	var op ast.MutationOp
	switch {
	case p.c.eatKw("SET"):
		op.Kind = ast.MutationSet
		items, err := p.parseSetItems()
		if err != nil {
			return op, err
		}
		op.SetOps = items
	case p.c.eatKw("REMOVE"):
		op.Kind = ast.MutationRemove
		items, err := p.parseExprList()
		if err != nil {
			return op, err
		}
		op.Removes = items
	case p.c.kw("DELETE") || p.c.kw("DETACH") || p.c.kw("NODETACH"):
		switch {
		case p.c.eatKw("DETACH"):
			op.Detach = ast.Detach
			if err := p.c.expectKw("DELETE"); err != nil {
				return op, err
			}
		case p.c.eatKw("NODETACH"):
			op.Detach = ast.NoDetach
			if err := p.c.expectKw("DELETE"); err != nil {
				return op, err
			}
		default:
			p.c.advance() // DELETE
		}
		items, err := p.parseExprList()
		if err != nil {
			return op, err
		}
		op.Kind = ast.MutationDelete
		op.Deletes = items
	case p.c.eatKw("INSERT"):
		op.Kind = ast.MutationInsert
		pattern, err := p.parsePathPattern()
		if err != nil {
			return op, err
		}
		op.Pattern = pattern
	default:
		return op, ErrExpectedToken.New("INSERT, SET, REMOVE, or DELETE")
	}
	return op, nil
}

func (p *Parser) parseSetItems() ([]ast.SetItem, error) {
	var out []ast.SetItem
	for {
		target, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		access, ok := target.(*ast.PropertyAccess)
		if !ok {
			return nil, ErrExpectedToken.New("property assignment target")
		}
		if err := p.c.expectPunct("="); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, ast.SetItem{Target: access.Object, Property: access.Property, Value: val})
		if !p.c.eatPunct(",") {
			break
		}
	}
	return out, nil
}

func (p *Parser) parseExprList() ([]ast.Expr, error) {
	var out []ast.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if !p.c.eatPunct(",") {
			break
		}
	}
	return out, nil
}
