package parser

import (
	"fmt"

	"github.com/ritamzico/gqlgraph/internal/lexer"
)

// cursor is a backtrackable position into a token slice. Sub-parsers take a
// *cursor by value at a checkpoint (cur.mark()) and restore it on failure,
// giving the ordered-try-then-backtrack behaviour the top-level dispatcher
// needs.
type cursor struct {
	toks []lexer.Token
	pos  int
}

func newCursor(toks []lexer.Token) *cursor {
	return &cursor{toks: toks}
}

func (c *cursor) mark() int { return c.pos }

func (c *cursor) reset(m int) { c.pos = m }

func (c *cursor) peek() lexer.Token {
	if c.pos >= len(c.toks) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return c.toks[c.pos]
}

func (c *cursor) peekAt(offset int) lexer.Token {
	i := c.pos + offset
	if i >= len(c.toks) || i < 0 {
		return lexer.Token{Kind: lexer.EOF}
	}
	return c.toks[i]
}

func (c *cursor) atEOF() bool {
	return c.peek().Kind == lexer.EOF
}

func (c *cursor) advance() lexer.Token {
	t := c.peek()
	if t.Kind != lexer.EOF {
		c.pos++
	}
	return t
}

// kw reports whether the current token is the named keyword, without
// consuming it.
func (c *cursor) kw(name string) bool {
	return c.peek().Is(lexer.Keyword, name)
}

// kwAt reports whether the token `offset` ahead is the named keyword.
func (c *cursor) kwAt(offset int, name string) bool {
	return c.peekAt(offset).Is(lexer.Keyword, name)
}

// eatKw consumes the current token if it is the named keyword.
func (c *cursor) eatKw(name string) bool {
	if c.kw(name) {
		c.advance()
		return true
	}
	return false
}

// expectKw consumes the named keyword or returns ErrExpectedToken.
func (c *cursor) expectKw(name string) error {
	if !c.eatKw(name) {
		return ErrExpectedToken.New(name)
	}
	return nil
}

// punct reports whether the current token is the given punctuation text
// (Punct or Direction kind both carry raw text).
func (c *cursor) punct(text string) bool {
	t := c.peek()
	return (t.Kind == lexer.Punct || t.Kind == lexer.Direction) && t.Text == text
}

func (c *cursor) eatPunct(text string) bool {
	if c.punct(text) {
		c.advance()
		return true
	}
	return false
}

func (c *cursor) expectPunct(text string) error {
	if !c.eatPunct(text) {
		return ErrExpectedToken.New(text)
	}
	return nil
}

// ident returns the current token's text if it is an Ident or
// BacktickIdent (unquoted), plus whether it matched.
func (c *cursor) ident() (string, bool) {
	t := c.peek()
	switch t.Kind {
	case lexer.Ident:
		return t.Text, true
	case lexer.BacktickIdent:
		return unquoteBacktick(t.Text), true
	}
	return "", false
}

func (c *cursor) eatIdent() (string, bool) {
	if name, ok := c.ident(); ok {
		c.advance()
		return name, true
	}
	return "", false
}

func (c *cursor) expectIdent() (string, error) {
	name, ok := c.eatIdent()
	if !ok {
		return "", ErrExpectedToken.New("identifier")
	}
	return name, nil
}

func unquoteBacktick(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func unexpectedErr(t lexer.Token) error {
	return ErrUnexpectedToken.New(fmt.Sprintf("%s", t))
}
