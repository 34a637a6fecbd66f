package parser

import "fmt"

// TokenType represents the type of a source token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenText
	TokenInteger
	TokenDecimal
	TokenRelation
	TokenVariable
	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
	TokenLeftBrace
	TokenRightBrace
	TokenGlob     // ..
	TokenMath     // $(
	TokenColon    // rule separator, or cons inside $( )
	TokenUnify    // ~
	TokenNot      // !
	TokenAlt      // ;
	TokenAnd      // ,
	TokenCompare  // < <= = >= >
	TokenOperator // + - * / ^ & |
	TokenEnd      // .
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenText:         "Text",
	TokenInteger:      "Integer",
	TokenDecimal:      "Decimal",
	TokenRelation:     "Relation",
	TokenVariable:     "Variable",
	TokenLeftParen:    "LeftParen",
	TokenRightParen:   "RightParen",
	TokenLeftBracket:  "LeftBracket",
	TokenRightBracket: "RightBracket",
	TokenLeftBrace:    "LeftBrace",
	TokenRightBrace:   "RightBrace",
	TokenGlob:         "Glob",
	TokenMath:         "Math",
	TokenColon:        "Colon",
	TokenUnify:        "Unify",
	TokenNot:          "Not",
	TokenAlt:          "Alt",
	TokenAnd:          "And",
	TokenCompare:      "Compare",
	TokenOperator:     "Operator",
	TokenEnd:          "End",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenEOF, TokenLeftParen, TokenRightParen, TokenLeftBracket, TokenRightBracket,
		TokenLeftBrace, TokenRightBrace, TokenGlob, TokenMath, TokenColon, TokenUnify,
		TokenNot, TokenAlt, TokenAnd, TokenEnd:
		return fmt.Sprintf("%s[%d:%d]", t.Type, t.Line, t.Col)
	case TokenText:
		return fmt.Sprintf("%s[%d:%d]:%q", t.Type, t.Line, t.Col, t.Value)
	default:
		return fmt.Sprintf("%s[%d:%d]:%s", t.Type, t.Line, t.Col, t.Value)
	}
}

// endsValue reports whether a token can be the last token of a term.
// Inside math expressions a sign after such a token is an operator.
func (t Token) endsValue() bool {
	switch t.Type {
	case TokenText, TokenInteger, TokenDecimal, TokenRelation, TokenVariable,
		TokenRightParen, TokenRightBracket, TokenRightBrace:
		return true
	}
	return false
}
