package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicTokens(t *testing.T) {
	toks := Tokenize(`in x: Int
result = TestModule(x) with retry: 3, timeout: 30s
out result`)

	want := []TokenType{
		IN, IDENT, COLON, IDENT,
		IDENT, ASSIGN, IDENT, LPAREN, IDENT, RPAREN, WITH, IDENT, COLON, INT, COMMA, IDENT, COLON, DURATION,
		OUT, IDENT,
		EOF,
	}
	require.Len(t, toks, len(want))
	for i, tt := range want {
		assert.Equalf(t, tt, toks[i].Type, "token %d (%q)", i, toks[i].Literal)
	}
}

func TestDurationVsPlainInt(t *testing.T) {
	toks := Tokenize("5s 5 100ms 1min 1h 1d")
	want := []TokenType{DURATION, INT, DURATION, DURATION, DURATION, DURATION, EOF}
	require.Len(t, toks, len(want))
	for i, tt := range want {
		assert.Equalf(t, tt, toks[i].Type, "token %d (%q)", i, toks[i].Literal)
	}
}

func TestStringEscapesPreserveInterpolation(t *testing.T) {
	toks := Tokenize(`"hello ${name}, it's \"quoted\""`)
	require.Equal(t, STRING, toks[0].Type)
	want := `hello ${name}, it's "quoted"`
	assert.Equal(t, want, toks[0].Literal)
}

func TestUnderscoreWildcard(t *testing.T) {
	toks := Tokenize("_")
	require.Equal(t, UNDERSCORE, toks[0].Type)
}

func TestKeywords(t *testing.T) {
	toks := Tokenize("if then else and or not when match with use type")
	want := []TokenType{IF, THEN, ELSE, AND, OR, NOT, WHEN, MATCH, WITH, USE, TYPE, EOF}
	for i, tt := range want {
		assert.Equal(t, tt, toks[i].Type, "token %d", i)
	}
}
