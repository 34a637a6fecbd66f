package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lex(t *testing.T, input string) []Token {
	t.Helper()
	l := NewLexer(input)
	require.NoError(t, l.Lex())
	return l.Tokens()
}

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestLexerBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "empty input",
			input: "",
			expected: []Token{
				{Type: TokenEOF, Line: 1, Col: 1},
			},
		},
		{
			name:  "fact",
			input: `alice parent_of "bob".`,
			expected: []Token{
				{Type: TokenRelation, Value: "alice", Line: 1, Col: 1},
				{Type: TokenRelation, Value: "parent_of", Line: 1, Col: 7},
				{Type: TokenText, Value: "bob", Line: 1, Col: 17},
				{Type: TokenEnd, Value: ".", Line: 1, Col: 22},
				{Type: TokenEOF, Line: 1, Col: 23},
			},
		},
		{
			name:  "numbers",
			input: "12 -3 4.50 7.",
			expected: []Token{
				{Type: TokenInteger, Value: "12", Line: 1, Col: 1},
				{Type: TokenInteger, Value: "-3", Line: 1, Col: 4},
				{Type: TokenDecimal, Value: "4.50", Line: 1, Col: 7},
				{Type: TokenInteger, Value: "7", Line: 1, Col: 12},
				{Type: TokenEnd, Value: ".", Line: 1, Col: 13},
				{Type: TokenEOF, Line: 1, Col: 14},
			},
		},
		{
			name:  "comments",
			input: "% a comment\nX % inline % ~ 1",
			expected: []Token{
				{Type: TokenVariable, Value: "X", Line: 2, Col: 1},
				{Type: TokenUnify, Value: "~", Line: 2, Col: 14},
				{Type: TokenInteger, Value: "1", Line: 2, Col: 16},
				{Type: TokenEOF, Line: 2, Col: 17},
			},
		},
		{
			name:  "comparisons",
			input: "< <= >= > =",
			expected: []Token{
				{Type: TokenCompare, Value: "<", Line: 1, Col: 1},
				{Type: TokenCompare, Value: "<=", Line: 1, Col: 3},
				{Type: TokenCompare, Value: ">=", Line: 1, Col: 6},
				{Type: TokenCompare, Value: ">", Line: 1, Col: 9},
				{Type: TokenCompare, Value: "=", Line: 1, Col: 11},
				{Type: TokenEOF, Line: 1, Col: 12},
			},
		},
		{
			name:  "text escapes and single quotes",
			input: `'it\'s' "a\n\"b\""`,
			expected: []Token{
				{Type: TokenText, Value: "it's", Line: 1, Col: 1},
				{Type: TokenText, Value: "a\n\"b\"", Line: 1, Col: 9},
				{Type: TokenEOF, Line: 1, Col: 19},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, lex(t, tt.input))
		})
	}
}

func TestLexerPunctuation(t *testing.T) {
	tokens := lex(t, "{ .. H } ~ [1], !(a; b)")
	assert.Equal(t, []TokenType{
		TokenLeftBrace, TokenGlob, TokenVariable, TokenRightBrace, TokenUnify,
		TokenLeftBracket, TokenInteger, TokenRightBracket, TokenAnd,
		TokenNot, TokenLeftParen, TokenRelation, TokenAlt, TokenRelation, TokenRightParen,
		TokenEOF,
	}, types(tokens))
}

func TestLexerSignsInMath(t *testing.T) {
	tokens := lex(t, "$(N-1 * -2) -3")
	assert.Equal(t, []TokenType{
		TokenMath, TokenVariable, TokenOperator, TokenInteger, TokenOperator,
		TokenInteger, TokenRightParen, TokenInteger, TokenEOF,
	}, types(tokens))
	assert.Equal(t, "1", tokens[3].Value)
	assert.Equal(t, "-2", tokens[5].Value)
	assert.Equal(t, "-3", tokens[7].Value, "outside math a sign before a digit is part of the number")
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated text", `"abc`},
		{"bad escape", `"\q"`},
		{"dollar without paren", "$X"},
		{"stray close paren", ")"},
		{"unclosed paren", "(a"},
		{"unknown character", "X @ Y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewLexer(tt.input).Lex())
		})
	}
}
