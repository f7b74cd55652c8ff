package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize_EndsInEOF(t *testing.T) {
	toks, err := Tokenize("MATCH (n) RETURN n")
	require.NoError(t, err)
	require.NotEmpty(t, toks)
	require.Equal(t, EOF, toks[len(toks)-1].Kind)
}

func TestTokenize_Idempotent(t *testing.T) {
	first, err := Tokenize("MATCH (n:Person {age: 18}) WHERE n.age > 18 RETURN n.name")
	require.NoError(t, err)

	second, err := Tokenize("MATCH (n:Person {age: 18}) WHERE n.age > 18 RETURN n.name")
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestTokenize_Direction(t *testing.T) {
	toks, err := Tokenize("()-[]->()<-[]-()<->()")
	require.NoError(t, err)

	var dirs []string
	for _, tok := range toks {
		if tok.Kind == Direction {
			dirs = append(dirs, tok.Text)
		}
	}
	require.Equal(t, []string{"-", "->", "<-", "-", "<->"}, dirs)
}

func TestTokenize_KeywordCaseInsensitive(t *testing.T) {
	toks, err := Tokenize("match (n) return n")
	require.NoError(t, err)
	require.Equal(t, Keyword, toks[0].Kind)
	require.Equal(t, "MATCH", toks[0].Text)
}

func TestTokenize_BacktickIdentifier(t *testing.T) {
	toks, err := Tokenize("MATCH (`my node`) RETURN `my node`")
	require.NoError(t, err)
	require.Equal(t, BacktickIdent, toks[2].Kind)
}

func TestTokenize_Param(t *testing.T) {
	toks, err := Tokenize("MATCH (n) WHERE n.age = $minAge RETURN n")
	require.NoError(t, err)

	found := false
	for _, tok := range toks {
		if tok.Kind == Param {
			found = true
			require.Equal(t, "$minAge", tok.Text)
		}
	}
	require.True(t, found)
}
