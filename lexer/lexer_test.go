package lexer

import (
	"testing"

	"github.com/alexeyden/ecmascript-toy/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typesOf(toks []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestOperators(t *testing.T) {
	toks, err := New("== / = * + > - < != <= >= ! && ||").Scan()
	require.NoError(t, err)
	assert.Equal(t, []token.TokenType{
		token.EQUAL_EQUAL, token.DIV, token.ASSIGN, token.MULT, token.ADD,
		token.LARGER, token.SUB, token.LESS, token.NOT_EQUAL, token.LESS_EQUAL,
		token.LARGER_EQUAL, token.BANG, token.AND_AND, token.OR_OR, token.EOF,
	}, typesOf(toks))
}

func TestDelimiters(t *testing.T) {
	toks, err := New("(){}[],:;.").Scan()
	require.NoError(t, err)
	assert.Equal(t, []token.TokenType{
		token.LPA, token.RPA, token.LCUR, token.RCUR, token.LBRACKET, token.RBRACKET,
		token.COMMA, token.COLON, token.SEMICOLON, token.DOT, token.EOF,
	}, typesOf(toks))
}

func TestNumberLiteral(t *testing.T) {
	toks, err := New("42 3.14").Scan()
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, token.NUMBER, toks[0].Type)
	assert.Equal(t, "42", toks[0].Lexeme)
	assert.Equal(t, token.NUMBER, toks[1].Type)
	assert.Equal(t, "3.14", toks[1].Lexeme)
}

func TestLeadingDotIsNotNumber(t *testing.T) {
	toks, err := New(".5").Scan()
	require.NoError(t, err)
	assert.Equal(t, []token.TokenType{token.DOT, token.NUMBER, token.EOF}, typesOf(toks))
}

func TestStringLiteralKeepsQuotes(t *testing.T) {
	toks, err := New("'hello world'").Scan()
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, "'hello world'", toks[0].Lexeme)
}

func TestUnclosedStringIsError(t *testing.T) {
	_, err := New("'hello").Scan()
	require.Error(t, err)
}

func TestComment(t *testing.T) {
	toks, err := New("1 // this is dropped\n2").Scan()
	require.NoError(t, err)
	assert.Equal(t, []token.TokenType{token.NUMBER, token.NUMBER, token.EOF}, typesOf(toks))
}

func TestIdentifierAndKeywords(t *testing.T) {
	toks, err := New("var x if else while return fn function foo_bar").Scan()
	require.NoError(t, err)
	assert.Equal(t, []token.TokenType{
		token.VAR, token.IDENTIFIER, token.IF, token.ELSE, token.WHILE, token.RETURN,
		token.FUNCTION, token.FUNCTION, token.IDENTIFIER, token.EOF,
	}, typesOf(toks))
}

func TestLoneAmpersandIsError(t *testing.T) {
	_, err := New("a & b").Scan()
	require.Error(t, err)
}

func TestLonePipeIsError(t *testing.T) {
	_, err := New("a | b").Scan()
	require.Error(t, err)
}

func TestEmptyInput(t *testing.T) {
	toks, err := New("").Scan()
	require.NoError(t, err)
	assert.Equal(t, []token.TokenType{token.EOF}, typesOf(toks))
}

func TestLineAndColumnTracking(t *testing.T) {
	toks, err := New("a\nb").Scan()
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
}
