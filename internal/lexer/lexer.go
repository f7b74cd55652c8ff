package lexer

import (
	"fmt"
	"strings"

	participleLexer "github.com/alecthomas/participle/v2/lexer"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// ErrLexer is the single error kind this package raises; the classified
// message text (offset, offending rune) is filled in at the call site.
var ErrLexer = goerrors.NewKind("lexer error: %s")

// keywords is the full reserved-word set recognised by the parser. Anything
// not in this list that matches the identifier pattern becomes a plain
// Ident token. The Text of a Keyword token is upper-cased, whatever its
// casing in the source; Ident tokens keep their source casing.
var keywords = []string{
	"MATCH", "WHERE", "RETURN", "WITH", "GROUP", "BY", "HAVING", "ORDER",
	"LIMIT", "OFFSET", "UNION", "EXCEPT", "INTERSECT", "ALL", "DISTINCT",
	"AS", "AND", "OR", "XOR", "NOT", "IN", "IS", "NULL", "TRUE", "FALSE",
	"UNKNOWN", "NORMALIZED", "DIRECTED", "SOURCE", "DESTINATION", "TYPED",
	"LABEL", "CASE", "WHEN", "THEN", "ELSE", "END", "CAST", "EXISTS",
	"UNWIND", "LET", "FOR", "FILTER", "CALL", "YIELD", "SELECT", "FROM",
	"DELETE", "DETACH", "NODETACH", "REMOVE", "SET", "INSERT", "CREATE",
	"DROP", "GRAPH", "SCHEMA", "TYPE", "INDEX", "TABLE", "USER", "ROLE",
	"GRANT", "REVOKE", "SESSION", "TRANSACTION", "START", "COMMIT",
	"ROLLBACK", "BEGIN", "DECLARE", "NEXT", "AT", "PROCEDURE", "WALK",
	"TRAIL", "SIMPLE", "PATH", "ACYCLIC", "OPTIONAL", "LIKE", "ASC", "DESC",
	"NULLS", "FIRST", "LAST", "READ", "WRITE", "ONLY", "ISOLATION", "LEVEL",
	"UNCOMMITTED", "COMMITTED", "REPEATABLE", "SERIALIZABLE", "COUNT",
	"SUM", "AVG", "MIN", "MAX", "COLLECT", "CLEAR", "TRUNCATE", "TO",
	"VECTOR", "ATLOCATION", "ELEMENTS", "USE", "RESET", "TIMEZONE", "CLOSE",
	"IF", "EXISTS_", "OR_REPLACE", "ON", "PROPERTY", "CASCADE", "RESTRICT",
}

func keywordPattern() string {
	var b strings.Builder
	b.WriteString(`(?i)\b(`)
	for i, kw := range keywords {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(kw)
	}
	b.WriteString(`)\b`)
	return b.String()
}

var simpleRules = []participleLexer.SimpleRule{
	{Name: "Keyword", Pattern: keywordPattern()},
	{Name: "Float", Pattern: `\d+\.\d+([eE][+-]?\d+)?`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "String", Pattern: `'([^'\\]|\\.)*'|"([^"\\]|\\.)*"`},
	{Name: "BacktickIdent", Pattern: "`([^`\\\\]|\\\\.)*`"},
	{Name: "Param", Pattern: `\$[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "ArrowBoth", Pattern: `<->`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "ArrowLeft", Pattern: `<-`},
	{Name: "Punct", Pattern: `[(){}\[\]:;,.=<>!+\-*/%|?]`},
	{Name: "Whitespace", Pattern: `\s+`},
}

var dslLexer = participleLexer.MustSimple(simpleRules)

// Tokenize runs the full input through the lexer and appends a trailing
// EOF sentinel (data-model invariant: every tokenised source ends in EOF).
func Tokenize(input string) ([]Token, error) {
	lx, err := dslLexer.Lex("", strings.NewReader(input))
	if err != nil {
		return nil, ErrLexer.New(err.Error())
	}

	symbols := dslLexer.Symbols()
	names := make(map[participleLexer.TokenType]string, len(symbols))
	for name, tt := range symbols {
		names[tt] = name
	}

	var out []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, ErrLexer.New(err.Error())
		}
		if tok.EOF() {
			break
		}
		name := names[tok.Type]
		if name == "Whitespace" {
			continue
		}
		pos := Position{Line: tok.Pos.Line, Column: tok.Pos.Column, Offset: tok.Pos.Offset}
		switch name {
		case "Keyword":
			out = append(out, Token{Kind: Keyword, Text: strings.ToUpper(tok.Value), Pos: pos})
		case "Float":
			out = append(out, Token{Kind: Float, Text: tok.Value, Pos: pos})
		case "Int":
			out = append(out, Token{Kind: Int, Text: tok.Value, Pos: pos})
		case "String":
			out = append(out, Token{Kind: String, Text: tok.Value, Pos: pos})
		case "BacktickIdent":
			out = append(out, Token{Kind: BacktickIdent, Text: tok.Value, Pos: pos})
		case "Param":
			out = append(out, Token{Kind: Param, Text: tok.Value, Pos: pos})
		case "Ident":
			out = append(out, Token{Kind: Ident, Text: tok.Value, Pos: pos})
		case "ArrowBoth", "Arrow", "ArrowLeft":
			out = append(out, Token{Kind: Direction, Text: tok.Value, Pos: pos})
		case "Punct":
			if tok.Value == "-" {
				out = append(out, Token{Kind: Direction, Text: "-", Pos: pos})
			} else {
				out = append(out, Token{Kind: Punct, Text: tok.Value, Pos: pos})
			}
		default:
			return nil, ErrLexer.New(fmt.Sprintf("unrecognised token %q", tok.Value))
		}
	}

	out = append(out, Token{Kind: EOF, Text: "", Pos: Position{}})
	return out, nil
}
