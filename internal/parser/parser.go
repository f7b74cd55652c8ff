// Package parser turns a token stream into an ast.Document via hand-written
// recursive descent with ordered backtracking at statement-type boundaries. A
// declarative grammar (e.g. participle's struct-tag DSL) cannot express the
// specific diagnostics and first-success-wins try order this dialect requires,
// so only participle's lexer is reused here (internal/lexer); the grammar
// itself is grounded on original_source/graphlite's ast/parser.rs.
package parser

import (
	"github.com/ritamzico/gqlgraph/internal/ast"
	"github.com/ritamzico/gqlgraph/internal/lexer"
)

// Parser holds the token cursor shared by every sub-parser in this package.
type Parser struct {
	c *cursor
}

// Parse tokenizes input, filters SQL-style comments, runs the pre-parse
// diagnostics, and dispatches to the top-level statement parser.
func Parse(input string) (*ast.Document, error) {
	toks, err := lexer.Tokenize(input)
	if err != nil {
		return nil, err
	}
	toks = filterSQLComments(toks)

	if err := preParseChecks(toks); err != nil {
		return nil, err
	}

	if len(toks) == 0 || (len(toks) == 1 && toks[0].Kind == lexer.EOF) {
		return nil, ErrExpectedToken.New("statement")
	}

	p := &Parser{c: newCursor(toks)}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if !p.c.atEOF() {
		p.c.eatPunct(";")
		if !p.c.atEOF() {
			return nil, unexpectedErr(p.c.peek())
		}
	}
	return &ast.Document{Statement: stmt}, nil
}

// preParseChecks flags the invalid-DELETE forms and incomplete set
// operations before any recursive-descent attempt runs, exactly as the
// original implementation does (original_source/graphlite's ast/parser.rs
// parse_query).
func preParseChecks(toks []lexer.Token) error {
	if len(toks) >= 2 {
		if toks[0].Is(lexer.Keyword, "DELETE") && toks[1].Is(lexer.Keyword, "SCHEMA") {
			return ErrInvalidDeleteSchema.New()
		}
		if toks[0].Is(lexer.Keyword, "DELETE") && toks[1].Is(lexer.Keyword, "GRAPH") {
			return ErrInvalidDeleteGraph.New()
		}
	}

	for i, t := range toks {
		trailingEmpty := i+1 >= len(toks) || toks[i+1].Kind == lexer.EOF
		switch {
		case t.Is(lexer.Keyword, "UNION") && trailingEmpty:
			return ErrIncompleteUnion.New()
		case t.Is(lexer.Keyword, "EXCEPT") && trailingEmpty:
			return ErrIncompleteExcept.New()
		case t.Is(lexer.Keyword, "INTERSECT") && trailingEmpty:
			return ErrIncompleteIntersect.New()
		}
	}
	return nil
}
