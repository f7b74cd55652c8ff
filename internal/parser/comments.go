package parser

import "github.com/ritamzico/gqlgraph/internal/lexer"

// filterSQLComments drops SQL-style `--` line comments from a token
// stream. Two consecutive Direction("-") tokens start a comment UNLESS
// the token immediately after them opens an edge pattern (->, <-, <->,
// `(`, `[`), in which case the dashes are left alone as pattern syntax
// (original_source/graphlite's ast/parser.rs filter_sql_comments).
func filterSQLComments(tokens []lexer.Token) []lexer.Token {
	var out []lexer.Token
	i := 0
	for i < len(tokens) {
		if i+1 < len(tokens) && isDash(tokens[i]) && isDash(tokens[i+1]) {
			if i+2 < len(tokens) {
				next := tokens[i+2]
				switch {
				case next.Kind == lexer.Direction && (next.Text == "->" || next.Text == "<-" || next.Text == "<->"):
					out = append(out, tokens[i])
					i++
					continue
				case next.Kind == lexer.Punct && (next.Text == "(" || next.Text == "["):
					out = append(out, tokens[i])
					i++
					continue
				case next.Kind == lexer.EOF:
					out = append(out, tokens[i])
					i++
					continue
				default:
					for i < len(tokens) && tokens[i].Kind != lexer.EOF {
						i++
					}
					continue
				}
			}
			out = append(out, tokens[i])
			i++
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return out
}

func isDash(t lexer.Token) bool {
	return t.Kind == lexer.Direction && t.Text == "-"
}
