package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes source text
type Lexer struct {
	input   string
	pos     int
	line    int
	col     int
	tokens  []Token
	current int

	// parens records, for each open parenthesis, whether it belongs to a
	// math expression
	parens []bool
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
}

// Lex tokenizes the entire input
func (l *Lexer) Lex() error {
	for l.pos < len(l.input) {
		l.skipWhitespaceAndComments()
		if l.pos >= len(l.input) {
			break
		}

		startLine := l.line
		startCol := l.col
		emit := func(typ TokenType, value string) {
			l.tokens = append(l.tokens, Token{Type: typ, Value: value, Line: startLine, Col: startCol})
		}

		ch := l.peek()
		switch {
		case ch == '"' || ch == '\'':
			str, err := l.readText(ch)
			if err != nil {
				return err
			}
			emit(TokenText, str)
		case ch == '.':
			l.advance()
			if l.peek() == '.' {
				l.advance()
				emit(TokenGlob, "..")
			} else {
				emit(TokenEnd, ".")
			}
		case ch == '$':
			l.advance()
			if l.peek() != '(' {
				return fmt.Errorf("expected '(' after '$' at %d:%d", l.line, l.col)
			}
			l.advance()
			l.parens = append(l.parens, true)
			emit(TokenMath, "$(")
		case ch == '(':
			l.advance()
			l.parens = append(l.parens, l.inMath())
			emit(TokenLeftParen, "(")
		case ch == ')':
			l.advance()
			if len(l.parens) == 0 {
				return fmt.Errorf("unexpected ')' at %d:%d", startLine, startCol)
			}
			l.parens = l.parens[:len(l.parens)-1]
			emit(TokenRightParen, ")")
		case ch == '[':
			l.advance()
			emit(TokenLeftBracket, "[")
		case ch == ']':
			l.advance()
			emit(TokenRightBracket, "]")
		case ch == '{':
			l.advance()
			emit(TokenLeftBrace, "{")
		case ch == '}':
			l.advance()
			emit(TokenRightBrace, "}")
		case ch == ':':
			l.advance()
			emit(TokenColon, ":")
		case ch == '~':
			l.advance()
			emit(TokenUnify, "~")
		case ch == '!':
			l.advance()
			emit(TokenNot, "!")
		case ch == ';':
			l.advance()
			emit(TokenAlt, ";")
		case ch == ',':
			l.advance()
			emit(TokenAnd, ",")
		case ch == '<' || ch == '>':
			l.advance()
			op := string(ch)
			if l.peek() == '=' {
				l.advance()
				op += "="
			}
			emit(TokenCompare, op)
		case ch == '=':
			l.advance()
			emit(TokenCompare, "=")
		case (ch == '-' || ch == '+') && isDigit(l.peekAt(1)) && !l.signIsOperator():
			typ, num := l.readNumber()
			emit(typ, num)
		case strings.IndexByte("+-*/^&|", ch) >= 0:
			l.advance()
			emit(TokenOperator, string(ch))
		case isDigit(ch):
			typ, num := l.readNumber()
			emit(typ, num)
		default:
			r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
			if !unicode.IsLetter(r) {
				return fmt.Errorf("unexpected character '%c' at %d:%d", r, l.line, l.col)
			}
			word := l.readWord()
			if unicode.IsUpper(r) {
				emit(TokenVariable, word)
			} else {
				emit(TokenRelation, word)
			}
		}
	}

	if len(l.parens) > 0 {
		return fmt.Errorf("unclosed '(' at end of input")
	}

	// Add EOF token
	l.tokens = append(l.tokens, Token{
		Type: TokenEOF,
		Line: l.line,
		Col:  l.col,
	})

	return nil
}

// Tokens returns every token produced by Lex
func (l *Lexer) Tokens() []Token {
	return l.tokens
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}
	}
	token := l.tokens[l.current]
	l.current++
	return token
}

// PeekToken returns the next token without advancing
func (l *Lexer) PeekToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}
	}
	return l.tokens[l.current]
}

// mark and reset let the parser back up to an earlier token
func (l *Lexer) mark() int      { return l.current }
func (l *Lexer) reset(mark int) { l.current = mark }

func (l *Lexer) inMath() bool { return len(l.parens) > 0 && l.parens[len(l.parens)-1] }

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

// signIsOperator reports whether a '+' or '-' directly before a digit is
// a binary operator rather than the sign of a number literal
func (l *Lexer) signIsOperator() bool {
	if !l.inMath() || len(l.tokens) == 0 {
		return false
	}
	return l.tokens[len(l.tokens)-1].endsValue()
}

// peek returns the current character without advancing
func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// advance moves to the next character
func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

// skipWhitespaceAndComments skips whitespace and comments. A comment runs
// from '%' to the end of the line or to the next '%'.
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.peek()
		if unicode.IsSpace(rune(ch)) {
			l.advance()
		} else if ch == '%' {
			l.advance()
			for l.pos < len(l.input) && l.peek() != '\n' && l.peek() != '%' {
				l.advance()
			}
			if l.peek() == '%' {
				l.advance()
			}
		} else {
			break
		}
	}
}

// readText reads a quoted text literal
func (l *Lexer) readText(quote byte) (string, error) {
	var result strings.Builder
	startLine, startCol := l.line, l.col
	l.advance() // skip opening quote

	for l.pos < len(l.input) {
		ch := l.peek()
		if ch == quote {
			l.advance() // skip closing quote
			return result.String(), nil
		} else if ch == '\\' {
			l.advance()
			if l.pos >= len(l.input) {
				return "", fmt.Errorf("unexpected end of input in text at %d:%d", l.line, l.col)
			}
			escaped := l.peek()
			switch escaped {
			case 't':
				result.WriteByte('\t')
			case 'r':
				result.WriteByte('\r')
			case 'n':
				result.WriteByte('\n')
			case '\\', '"', '\'':
				result.WriteByte(escaped)
			default:
				return "", fmt.Errorf("invalid escape sequence '\\%c' at %d:%d", escaped, l.line, l.col)
			}
			l.advance()
		} else {
			result.WriteByte(ch)
			l.advance()
		}
	}

	return "", fmt.Errorf("unterminated text starting at %d:%d", startLine, startCol)
}

// readNumber reads an optionally signed integer or decimal
func (l *Lexer) readNumber() (TokenType, string) {
	start := l.pos
	if ch := l.peek(); ch == '-' || ch == '+' {
		l.advance()
	}
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() != '.' || !isDigit(l.peekAt(1)) {
		return TokenInteger, l.input[start:l.pos]
	}
	l.advance() // decimal point
	for isDigit(l.peek()) {
		l.advance()
	}
	return TokenDecimal, l.input[start:l.pos]
}

// readWord reads an identifier: letters, digits and underscores
func (l *Lexer) readWord() string {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			break
		}
		for i := 0; i < size; i++ {
			l.advance()
		}
	}
	return l.input[start:l.pos]
}
