package parser

import "github.com/ritamzico/gqlgraph/internal/ast"

// parseIndexStatement covers CREATE INDEX / DROP INDEX.
func (p *Parser) parseIndexStatement() (ast.Statement, error) {
	switch {
	case p.c.eatKw("CREATE"):
		if err := p.c.expectKw("INDEX"); err != nil {
			return nil, err
		}
		name, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.c.expectKw("ON"); err != nil {
			return nil, err
		}
		graphName, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		if err := p.c.expectPunct("("); err != nil {
			return nil, err
		}
		label, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.c.expectPunct("."); err != nil {
			return nil, err
		}
		prop, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.c.expectPunct(")"); err != nil {
			return nil, err
		}
		return ast.IndexStatement{Kind: ast.CreateIndex, Name: name, GraphName: graphName, Label: label, Property: prop}, nil
	case p.c.eatKw("DROP"):
		if err := p.c.expectKw("INDEX"); err != nil {
			return nil, err
		}
		name, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		return ast.IndexStatement{Kind: ast.DropIndex, Name: name}, nil
	}
	return nil, ErrExpectedToken.New("CREATE INDEX or DROP INDEX")
}
