package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanKeywordsAndIdentifiersAreDistinguishedByCase(t *testing.T) {
	toks, err := Scan("PROGRAM IS foo IN END")
	require.NoError(t, err)
	want := []TokenType{PROGRAM, IS, IDENT, IN, END, EOF}
	require.Len(t, toks, len(want))
	for i, typ := range want {
		assert.Equal(t, typ, toks[i].Type, "token %d", i)
	}
	assert.Equal(t, "foo", toks[2].Val)
}

func TestScanNumbersOperatorsAndComments(t *testing.T) {
	toks, err := Scan("a := 12 + b; # trailing comment\nc != 3")
	require.NoError(t, err)
	var types []TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{IDENT, ASSIGN, NUMBER, PLUS, IDENT, SEMI, IDENT, NEQ, NUMBER, EOF}, types)
}

func TestScanTracksLineNumbers(t *testing.T) {
	toks, err := Scan("a\nb\nc")
	require.NoError(t, err)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 3, toks[2].Line)
}

func TestScanRejectsUnexpectedCharacter(t *testing.T) {
	_, err := Scan("a $ b")
	assert.Error(t, err)
}

func TestScanRelationalOperators(t *testing.T) {
	toks, err := Scan("< <= > >= = !=")
	require.NoError(t, err)
	want := []TokenType{LT, LE, GT, GE, EQ, NEQ, EOF}
	require.Len(t, toks, len(want))
	for i, typ := range want {
		assert.Equal(t, typ, toks[i].Type, "token %d", i)
	}
}
