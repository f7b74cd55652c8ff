package parser

import "github.com/ritamzico/gqlgraph/internal/ast"

// parseProcedureBodyStatement parses a sequence of DECLARE statements followed
// by an initial statement and zero or more NEXT-threaded statements. NEXT is
// only legal inside this context.
func (p *Parser) parseProcedureBodyStatement() (ast.Statement, error) {
	var decls []ast.DeclareStatement
	for p.c.kw("DECLARE") {
		stmt, err := p.parseDeclareStatement()
		if err != nil {
			return nil, err
		}
		decls = append(decls, stmt.(ast.DeclareStatement))
		p.c.eatPunct(";")
	}
	if len(decls) == 0 {
		return nil, ErrExpectedToken.New("DECLARE")
	}

	initial, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	var nexts []ast.Statement
	for p.c.eatKw("NEXT") {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		nexts = append(nexts, stmt)
		p.c.eatPunct(";")
	}

	return ast.ProcedureBodyStatement{Declarations: decls, Initial: initial, Next: nexts}, nil
}
