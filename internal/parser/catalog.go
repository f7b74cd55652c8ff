package parser

import "github.com/ritamzico/gqlgraph/internal/ast"

// parseCatalogStatement covers the CREATE/DROP/ALTER DDL forms.
func (p *Parser) parseCatalogStatement() (ast.Statement, error) {
	switch {
	case p.c.eatKw("CREATE"):
		return p.parseCreateStatement()
	case p.c.eatKw("DROP"):
		return p.parseDropStatement()
	case p.c.eatKw("TRUNCATE"):
		if err := p.c.expectKw("GRAPH"); err != nil {
			return nil, err
		}
		name, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		return ast.CatalogStatement{Kind: ast.TruncateGraph, Name: name}, nil
	case p.c.eatKw("CLEAR"):
		if err := p.c.expectKw("GRAPH"); err != nil {
			return nil, err
		}
		name, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		return ast.CatalogStatement{Kind: ast.ClearGraph, Name: name}, nil
	case p.c.eatKw("GRANT"):
		return p.parseGrantRevoke(ast.GrantRole)
	case p.c.eatKw("REVOKE"):
		return p.parseGrantRevoke(ast.RevokeRole)
	}
	return nil, ErrExpectedToken.New("CREATE, DROP, TRUNCATE, CLEAR, GRANT, or REVOKE")
}

func (p *Parser) parseCreateStatement() (ast.Statement, error) {
	switch {
	case p.c.eatKw("SCHEMA"):
		ifNotExist := p.eatIfNotExists()
		name, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		return ast.CatalogStatement{Kind: ast.CreateSchema, Name: name, IfNotExist: ifNotExist}, nil
	case p.c.eatKw("GRAPH"):
		kind := ast.CreateGraph
		if p.c.eatKw("TYPE") { // CREATE GRAPH TYPE vs CREATE GRAPH
			kind = ast.CreateGraphType
		}
		ifNotExist := p.eatIfNotExists()
		name, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		return ast.CatalogStatement{Kind: kind, Name: name, IfNotExist: ifNotExist}, nil
	case p.c.eatKw("USER"):
		name, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		return ast.CatalogStatement{Kind: ast.CreateUser, Name: name}, nil
	case p.c.eatKw("ROLE"):
		name, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		return ast.CatalogStatement{Kind: ast.CreateRole, Name: name}, nil
	case p.c.eatKw("PROCEDURE"):
		name, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		return ast.CatalogStatement{Kind: ast.CreateProcedure, Name: name}, nil
	}
	return nil, ErrExpectedToken.New("SCHEMA, GRAPH, USER, ROLE, or PROCEDURE")
}

func (p *Parser) parseDropStatement() (ast.Statement, error) {
	switch {
	case p.c.eatKw("SCHEMA"):
		ifExists := p.eatIfExists()
		name, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		cascade := p.c.eatKw("CASCADE")
		return ast.CatalogStatement{Kind: ast.DropSchema, Name: name, IfExists: ifExists, Cascade: cascade}, nil
	case p.c.eatKw("PROPERTY"):
		if err := p.c.expectKw("GRAPH"); err != nil {
			return nil, err
		}
		ifExists := p.eatIfExists()
		name, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		return ast.CatalogStatement{Kind: ast.DropGraph, Name: name, IfExists: ifExists}, nil
	case p.c.eatKw("GRAPH"):
		kind := ast.DropGraph
		if p.c.eatKw("TYPE") {
			kind = ast.DropGraphType
		}
		ifExists := p.eatIfExists()
		name, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		return ast.CatalogStatement{Kind: kind, Name: name, IfExists: ifExists}, nil
	case p.c.eatKw("USER"):
		name, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		return ast.CatalogStatement{Kind: ast.DropUser, Name: name}, nil
	case p.c.eatKw("ROLE"):
		name, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		return ast.CatalogStatement{Kind: ast.DropRole, Name: name}, nil
	case p.c.eatKw("PROCEDURE"):
		name, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		return ast.CatalogStatement{Kind: ast.DropProcedure, Name: name}, nil
	}
	return nil, ErrExpectedToken.New("SCHEMA, GRAPH, USER, ROLE, or PROCEDURE")
}

func (p *Parser) parseGrantRevoke(kind ast.CatalogStatementKind) (ast.Statement, error) {
	role, err := p.c.expectIdent()
	if err != nil {
		return nil, err
	}
	p.c.eatKw("TO")
	p.c.eatKw("FROM")
	if _, ok := p.c.eatIdent(); !ok {
		return nil, ErrExpectedToken.New("user or role name")
	}
	return ast.CatalogStatement{Kind: kind, Name: role}, nil
}

func (p *Parser) eatIfExists() bool {
	if p.c.eatKw("IF") {
		p.c.eatKw("EXISTS")
		return true
	}
	return false
}

func (p *Parser) eatIfNotExists() bool {
	if p.c.eatKw("IF") {
		p.c.eatKw("NOT")
		p.c.eatKw("EXISTS")
		return true
	}
	return false
}

// parseDottedName accepts a `/schema/graph`-style path or a plain identifier,
// joined with "/".
func (p *Parser) parseDottedName() (string, error) {
	p.c.eatPunct("/")
	name, err := p.c.expectIdent()
	if err != nil {
		return "", err
	}
	for p.c.eatPunct("/") {
		part, err := p.c.expectIdent()
		if err != nil {
			return "", err
		}
		name = name + "/" + part
	}
	return name, nil
}
