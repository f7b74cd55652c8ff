package parser

import "github.com/ritamzico/gqlgraph/internal/ast"

// parseStatement tries each top-level statement form in a fixed order: AT
// location, DECLARE, SESSION, TRANSACTION, catalog DDL, INDEX DDL,
// data-modifying, procedure body, CALL, SELECT, and finally a general Query.
// Each attempt snapshots the cursor and rewinds on failure.
func (p *Parser) parseStatement() (ast.Statement, error) {
	type attempt struct {
		try func() (ast.Statement, error)
	}
	attempts := []attempt{
		{p.parseAtLocationStatement},
		{p.parseDeclareStatement},
		{p.parseSessionStatement},
		{p.parseTransactionStatement},
		{p.parseCatalogStatement},
		{p.parseIndexStatement},
		{p.parseDataStatement},
		{p.parseProcedureBodyStatement},
		{p.parseCallStatementTop},
		{p.parseSelectStatement},
	}
	for _, a := range attempts {
		mark := p.c.mark()
		stmt, err := a.try()
		if err == nil {
			return stmt, nil
		}
		p.c.reset(mark)
	}

	mark := p.c.mark()
	q, err := p.parseQuery()
	if err != nil {
		p.c.reset(mark)
		return nil, unexpectedErr(p.c.peek())
	}
	return ast.QueryStatement{Query: q}, nil
}

func (p *Parser) parseCallStatementTop() (ast.Statement, error) {
	stmt, err := p.parseCallStatement()
	if err != nil {
		return nil, err
	}
	if !p.c.atEOF() {
		return nil, unexpectedErr(p.c.peek())
	}
	return stmt, nil
}

func (p *Parser) parseCallStatement() (ast.Statement, error) {
	if err := p.c.expectKw("CALL"); err != nil {
		return nil, err
	}
	name, err := p.c.expectIdent()
	if err != nil {
		return nil, err
	}
	for p.c.eatPunct(".") {
		seg, err := p.c.expectIdent()
		if err != nil {
			return nil, err
		}
		name = name + "." + seg
	}
	cs := ast.CallStatement{Name: name}
	if p.c.eatPunct("(") {
		if !p.c.punct(")") {
			args, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			cs.Args = args
		}
		if err := p.c.expectPunct(")"); err != nil {
			return nil, err
		}
	}
	if p.c.eatKw("YIELD") {
		for {
			name, err := p.c.expectIdent()
			if err != nil {
				return nil, err
			}
			cs.Yield = append(cs.Yield, name)
			if !p.c.eatPunct(",") {
				break
			}
		}
	}
	if p.c.eatKw("WHERE") {
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cs.Where = w
	}
	return cs, nil
}

func (p *Parser) parseSelectStatement() (ast.Statement, error) {
	if err := p.c.expectKw("SELECT"); err != nil {
		return nil, err
	}
	ss := ast.SelectStatement{Distinct: p.c.eatKw("DISTINCT")}
	for {
		item, err := p.parseProjectionItem()
		if err != nil {
			return nil, err
		}
		ss.Items = append(ss.Items, item)
		if !p.c.eatPunct(",") {
			break
		}
	}
	if p.c.eatKw("FROM") {
		for {
			name, err := p.c.expectIdent()
			if err != nil {
				return nil, err
			}
			ss.From = append(ss.From, name)
			if !p.c.eatPunct(",") {
				break
			}
		}
	}
	if p.c.eatKw("WHERE") {
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ss.Where = w
	}
	groupBy, having, err := p.parseGroupHaving()
	if err != nil {
		return nil, err
	}
	ss.GroupBy, ss.Having = groupBy, having
	order, limit, offset, err := p.parseTrailingModifiers()
	if err != nil {
		return nil, err
	}
	ss.OrderBy, ss.Limit, ss.Offset = order, limit, offset
	if !p.c.atEOF() {
		return nil, unexpectedErr(p.c.peek())
	}
	return ss, nil
}

func (p *Parser) parseAtLocationStatement() (ast.Statement, error) {
	if err := p.c.expectKw("AT"); err != nil {
		return nil, err
	}
	graphExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var body []ast.Statement
	if p.c.eatPunct("{") {
		for !p.c.punct("}") {
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			body = append(body, stmt)
			p.c.eatPunct(";")
		}
		if err := p.c.expectPunct("}"); err != nil {
			return nil, err
		}
	} else {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return ast.AtLocationStatement{GraphExpr: graphExpr, Body: body}, nil
}

func (p *Parser) parseDeclareStatement() (ast.Statement, error) {
	if err := p.c.expectKw("DECLARE"); err != nil {
		return nil, err
	}
	name, err := p.c.expectIdent()
	if err != nil {
		return nil, err
	}
	ds := ast.DeclareStatement{Name: name}
	if typ, ok := p.c.eatIdent(); ok {
		ds.Type = typ
	}
	if p.c.eatPunct("=") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ds.Init = e
	}
	return ds, nil
}

func (p *Parser) parseSessionStatement() (ast.Statement, error) {
	if err := p.c.expectKw("SESSION"); err != nil {
		return nil, err
	}
	switch {
	case p.c.eatKw("RESET"):
		return ast.SessionStatement{Kind: ast.SessionReset}, nil
	case p.c.eatKw("CLOSE"):
		return ast.SessionStatement{Kind: ast.SessionClose}, nil
	case p.c.eatKw("SET"):
		var target ast.SessionSetTarget
		switch {
		case p.c.eatKw("GRAPH"):
			target = ast.SetGraphTarget
		case p.c.eatKw("SCHEMA"):
			target = ast.SetSchemaTarget
		case p.c.eatKw("TIMEZONE"):
			target = ast.SetTimeZoneTarget
		default:
			return nil, ErrExpectedToken.New("GRAPH, SCHEMA, or TIMEZONE")
		}
		p.c.eatKw("TO")
		value, err := p.c.expectIdent()
		if err != nil {
			if t := p.c.peek(); t.Kind != 0 {
				value = t.Text
				p.c.advance()
			} else {
				return nil, err
			}
		}
		return ast.SessionStatement{Kind: ast.SessionSet, Target: target, Value: value}, nil
	}
	return nil, ErrExpectedToken.New("SET, RESET, or CLOSE")
}

func (p *Parser) parseTransactionStatement() (ast.Statement, error) {
	switch {
	case p.c.eatKw("START"):
		if err := p.c.expectKw("TRANSACTION"); err != nil {
			return nil, err
		}
		return p.parseTransactionCharacteristics(ast.StartTransaction)
	case p.c.eatKw("BEGIN"):
		return p.parseTransactionCharacteristics(ast.StartTransaction)
	case p.c.eatKw("COMMIT"):
		return ast.TransactionStatement{Kind: ast.Commit}, nil
	case p.c.eatKw("ROLLBACK"):
		return ast.TransactionStatement{Kind: ast.Rollback}, nil
	case p.c.eatKw("SET"):
		if err := p.c.expectKw("TRANSACTION"); err != nil {
			return nil, err
		}
		return p.parseTransactionCharacteristics(ast.SetTransactionCharacteristics)
	}
	return nil, ErrExpectedToken.New("START TRANSACTION, BEGIN, COMMIT, ROLLBACK, or SET TRANSACTION")
}

func (p *Parser) parseTransactionCharacteristics(kind ast.TransactionStatementKind) (ast.Statement, error) {
	ts := ast.TransactionStatement{Kind: kind}
	for {
		switch {
		case p.c.eatKw("READ"):
			switch {
			case p.c.eatKw("WRITE"):
				m := ast.ReadWrite
				ts.Access = &m
			case p.c.eatKw("ONLY"):
				m := ast.ReadOnly
				ts.Access = &m
			default:
				return nil, ErrExpectedToken.New("WRITE or ONLY")
			}
		case p.c.kw("ISOLATION"):
			p.c.advance()
			if err := p.c.expectKw("LEVEL"); err != nil {
				return nil, err
			}
			lvl, err := p.parseIsolationLevel()
			if err != nil {
				return nil, err
			}
			ts.Isolation = &lvl
		default:
			return ts, nil
		}
		p.c.eatPunct(",")
	}
}

func (p *Parser) parseIsolationLevel() (ast.IsolationLevel, error) {
	switch {
	case p.c.eatKw("READ"):
		if p.c.eatKw("UNCOMMITTED") {
			return ast.ReadUncommitted, nil
		}
		if err := p.c.expectKw("COMMITTED"); err != nil {
			return 0, err
		}
		return ast.ReadCommitted, nil
	case p.c.eatKw("REPEATABLE"):
		if err := p.c.expectKw("READ"); err != nil {
			return 0, err
		}
		return ast.RepeatableRead, nil
	case p.c.eatKw("SERIALIZABLE"):
		return ast.Serializable, nil
	}
	return 0, ErrExpectedToken.New("isolation level")
}
