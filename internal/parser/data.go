package parser

import "github.com/ritamzico/gqlgraph/internal/ast"

// parseDataStatement covers the non-pipeline DML forms: a bare INSERT pattern,
// or a bare SET/REMOVE/DELETE with no preceding MATCH. The MATCH-prefixed forms
// are parsed as Query.MutationPipeline instead. It also raises the two
// historically confused DELETE forms as their own diagnostics.
func (p *Parser) parseDataStatement() (ast.Statement, error) {
	if p.c.kwAt(0, "DELETE") && p.c.kwAt(1, "SCHEMA") {
		return nil, ErrInvalidDeleteSchema.New()
	}
	if p.c.kwAt(0, "DELETE") && p.c.kwAt(1, "GRAPH") {
		return nil, ErrInvalidDeleteGraph.New()
	}

	switch {
	case p.c.eatKw("INSERT"):
		pattern, err := p.parsePathPattern()
		if err != nil {
			return nil, err
		}
		return ast.DataStatement{Kind: ast.Insert, Pattern: pattern}, nil
	case p.c.eatKw("SET"):
		items, err := p.parseSetItems()
		if err != nil {
			return nil, err
		}
		return ast.DataStatement{Kind: ast.SetData, SetOps: items}, nil
	case p.c.eatKw("REMOVE"):
		items, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		return ast.DataStatement{Kind: ast.RemoveData, Removes: items}, nil
	case p.c.kw("DELETE") || p.c.kw("DETACH") || p.c.kw("NODETACH"):
		op, err := p.parseMutationOp()
		if err != nil {
			return nil, err
		}
		return ast.DataStatement{Kind: ast.DeleteData, Deletes: op.Deletes, Detach: op.Detach}, nil
	}
	return nil, ErrExpectedToken.New("INSERT, SET, REMOVE, or DELETE")
}
