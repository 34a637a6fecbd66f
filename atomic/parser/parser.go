// Package parser reads the source language of facts, rules and queries.
//
// A source file is a sequence of statements ended by '.'. A statement made
// only of literals is a fact, a statement with a top-level ':' is a rule,
// and anything else is a query.
//
//	alice parent_of bob.
//	X grandparent_of Y : X parent_of T, T parent_of Y.
//	alice grandparent_of Who.
package parser

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/wbrown/atomicdb/atomic"
)

// Parser parses tokens into statements, constraints and terms
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new parser over a lexed input
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

func newParser(src string) (*Parser, error) {
	lexer := NewLexer(src)
	if err := lexer.Lex(); err != nil {
		return nil, err
	}
	return NewParser(lexer), nil
}

// ParseFile parses every statement in src
func ParseFile(src string) ([]atomic.Statement, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	return p.ParseAll()
}

// ParseStatement parses exactly one statement
func ParseStatement(src string) (atomic.Statement, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	stmt, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// ParseQuery parses a single constraint, optionally ended by '.'
func ParseQuery(src string) (atomic.Constraint, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	c, err := p.parseConstraint()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseClause parses a rule clause without its relation name: the
// parameter terms, ':' and the body. It reads what FormatClause writes.
func ParseClause(src string) (atomic.Clause, error) {
	p, err := newParser(src)
	if err != nil {
		return atomic.Clause{}, err
	}
	params, err := p.parseTerms()
	if err != nil {
		return atomic.Clause{}, err
	}
	if tok := p.lexer.NextToken(); tok.Type != TokenColon {
		return atomic.Clause{}, unexpected(tok, "':'")
	}
	body, err := p.parseBody()
	if err != nil {
		return atomic.Clause{}, err
	}
	if err := p.expectEOF(); err != nil {
		return atomic.Clause{}, err
	}
	return atomic.Clause{Params: params, Body: body}, nil
}

// ParseTerm parses a single term
func ParseTerm(src string) (atomic.Term, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	t, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if tok := p.lexer.PeekToken(); tok.Type != TokenEOF {
		return nil, unexpected(tok, "end of input")
	}
	return t, nil
}

// ParseAll reads statements until EOF
func (p *Parser) ParseAll() ([]atomic.Statement, error) {
	var statements []atomic.Statement
	for {
		for p.lexer.PeekToken().Type == TokenEnd {
			p.lexer.NextToken()
		}
		if p.lexer.PeekToken().Type == TokenEOF {
			return statements, nil
		}
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
}

// ParseStatement reads one statement and its terminating '.'. The final
// statement of the input may omit the '.'.
func (p *Parser) ParseStatement() (atomic.Statement, error) {
	stmt, err := p.readStatement()
	if err != nil {
		return nil, err
	}
	switch tok := p.lexer.PeekToken(); tok.Type {
	case TokenEnd:
		p.lexer.NextToken()
	case TokenEOF:
	default:
		return nil, unexpected(tok, "'.'")
	}
	return stmt, nil
}

func (p *Parser) readStatement() (atomic.Statement, error) {
	start := p.lexer.mark()
	if values, ok := p.tryFact(); ok {
		return atomic.FactStatement{Values: values}, nil
	}
	p.lexer.reset(start)

	first := p.lexer.PeekToken()
	signature, err := p.parseTerms()
	if err == nil && p.lexer.PeekToken().Type == TokenColon {
		p.lexer.NextToken()
		rule := atomic.RuleStatement{Signature: signature}
		if _, _, err := rule.Relation(); err != nil {
			return nil, fmt.Errorf("%w at %d:%d", err, first.Line, first.Col)
		}
		if rule.Body, err = p.parseBody(); err != nil {
			return nil, fmt.Errorf("rule body: %w", err)
		}
		return rule, nil
	}
	p.lexer.reset(start)

	c, err := p.parseConstraint()
	if err != nil {
		return nil, err
	}
	return atomic.QueryStatement{Constraint: c}, nil
}

// tryFact reads a statement made only of literal values. A lone fail or
// succeed is a query, not a fact.
func (p *Parser) tryFact() ([]atomic.Value, bool) {
	var values []atomic.Value
	for {
		switch p.lexer.PeekToken().Type {
		case TokenEnd, TokenEOF:
			if len(values) == 0 {
				return nil, false
			}
			if len(values) == 1 && isTerminal(values[0]) {
				return nil, false
			}
			return values, true
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
}

func isTerminal(v atomic.Value) bool {
	return atomic.Equal(v, atomic.Rel("fail")) || atomic.Equal(v, atomic.Rel("succeed"))
}

// parseBody reads the constraints of a rule body. Top-level conjunctions
// become separate body constraints.
func (p *Parser) parseBody() ([]atomic.Constraint, error) {
	switch p.lexer.PeekToken().Type {
	case TokenEnd, TokenEOF:
		return nil, nil
	}
	c, err := p.parseConstraint()
	if err != nil {
		return nil, err
	}
	if and, ok := c.(atomic.Intersections); ok {
		return []atomic.Constraint(and), nil
	}
	return []atomic.Constraint{c}, nil
}

// parseConstraint reads alternatives, the loosest binding form
func (p *Parser) parseConstraint() (atomic.Constraint, error) {
	first, err := p.parseIntersections()
	if err != nil {
		return nil, err
	}
	if p.lexer.PeekToken().Type != TokenAlt {
		return first, nil
	}
	alts := atomic.Alternatives{first}
	for p.lexer.PeekToken().Type == TokenAlt {
		p.lexer.NextToken()
		next, err := p.parseIntersections()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	return alts, nil
}

func (p *Parser) parseIntersections() (atomic.Constraint, error) {
	first, err := p.parseUnit()
	if err != nil {
		return nil, err
	}
	if p.lexer.PeekToken().Type != TokenAnd {
		return first, nil
	}
	and := atomic.Intersections{first}
	for p.lexer.PeekToken().Type == TokenAnd {
		p.lexer.NextToken()
		next, err := p.parseUnit()
		if err != nil {
			return nil, err
		}
		and = append(and, next)
	}
	return and, nil
}

// parseUnit reads a negation, a group, a unification, a comparison, a
// relation or one of the terminals fail and succeed
func (p *Parser) parseUnit() (atomic.Constraint, error) {
	tok := p.lexer.PeekToken()
	switch tok.Type {
	case TokenNot:
		p.lexer.NextToken()
		inner, err := p.parseUnit()
		if err != nil {
			return nil, err
		}
		return atomic.Not{Inner: inner}, nil

	case TokenLeftParen:
		p.lexer.NextToken()
		c, err := p.parseConstraint()
		if err != nil {
			return nil, err
		}
		if closing := p.lexer.NextToken(); closing.Type != TokenRightParen {
			return nil, unexpected(closing, "')'")
		}
		return c, nil
	}

	terms, err := p.parseTerms()
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, unexpected(tok, "a constraint")
	}

	switch op := p.lexer.PeekToken(); op.Type {
	case TokenUnify:
		p.lexer.NextToken()
		right, err := p.parseTerms()
		if err != nil {
			return nil, err
		}
		if len(right) == 0 {
			return nil, unexpected(p.lexer.PeekToken(), "terms after '~'")
		}
		return atomic.Unification{Left: terms, Right: right}, nil

	case TokenCompare:
		if len(terms) != 1 {
			return nil, fmt.Errorf("cannot have more than one value on either end of a comparison at %d:%d", tok.Line, tok.Col)
		}
		p.lexer.NextToken()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if next := p.lexer.PeekToken(); isTermStart(next.Type) {
			return nil, fmt.Errorf("cannot have more than one value on either end of a comparison at %d:%d", next.Line, next.Col)
		}
		return atomic.Comparison{Op: compareOps[op.Value], Left: terms[0], Right: right}, nil
	}

	if len(terms) == 1 {
		if lit, ok := terms[0].(atomic.Literal); ok {
			switch {
			case atomic.Equal(lit.Value, atomic.Rel("fail")):
				return atomic.Fail{}, nil
			case atomic.Equal(lit.Value, atomic.Rel("succeed")):
				return atomic.Succeed{}, nil
			}
		}
	}
	if len(terms) >= 2 {
		if lit, ok := terms[1].(atomic.Literal); ok {
			if name, ok := lit.Value.(atomic.RelationID); ok {
				args := make([]atomic.Term, 0, len(terms)-1)
				args = append(args, terms[0])
				args = append(args, terms[2:]...)
				return atomic.Relation{Name: name, Args: args}, nil
			}
		}
	}
	return nil, fmt.Errorf("expected a relation or group at %d:%d, got %s", tok.Line, tok.Col, formatTerms(terms))
}

var compareOps = map[string]atomic.CompareOp{
	"<":  atomic.LessThan,
	"<=": atomic.LessOrEqual,
	"=":  atomic.EqualTo,
	">=": atomic.GreaterOrEqual,
	">":  atomic.GreaterThan,
}

func isTermStart(t TokenType) bool {
	switch t {
	case TokenText, TokenInteger, TokenDecimal, TokenRelation, TokenVariable,
		TokenLeftBracket, TokenLeftBrace, TokenMath:
		return true
	}
	return false
}

// parseTerms reads terms for as long as they continue
func (p *Parser) parseTerms() ([]atomic.Term, error) {
	var terms []atomic.Term
	for isTermStart(p.lexer.PeekToken().Type) {
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

func (p *Parser) parseTerm() (atomic.Term, error) {
	tok := p.lexer.PeekToken()
	switch tok.Type {
	case TokenVariable:
		p.lexer.NextToken()
		return atomic.Var(tok.Value), nil
	case TokenLeftBrace:
		return p.parsePattern()
	case TokenMath:
		p.lexer.NextToken()
		e, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if closing := p.lexer.NextToken(); closing.Type != TokenRightParen {
			return nil, unexpected(closing, "')' closing the math expression")
		}
		return e, nil
	}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return atomic.Lit(v), nil
}

// parseValue reads a literal value: text, a number, a relation id or a
// list of literal values
func (p *Parser) parseValue() (atomic.Value, error) {
	tok := p.lexer.NextToken()
	switch tok.Type {
	case TokenText:
		return atomic.Text(tok.Value), nil
	case TokenInteger:
		n, ok := new(big.Int).SetString(tok.Value, 10)
		if !ok {
			return nil, fmt.Errorf("invalid number %q at %d:%d", tok.Value, tok.Line, tok.Col)
		}
		return atomic.NewNumber(n), nil
	case TokenDecimal:
		f, err := atomic.ParseFloat(tok.Value)
		if err != nil {
			return nil, fmt.Errorf("%w at %d:%d", err, tok.Line, tok.Col)
		}
		return f, nil
	case TokenRelation:
		return atomic.NewRelationID(tok.Value), nil
	case TokenLeftBracket:
		list := atomic.List{}
		for p.lexer.PeekToken().Type != TokenRightBracket {
			if p.lexer.PeekToken().Type == TokenEOF {
				return nil, fmt.Errorf("unterminated list starting at %d:%d", tok.Line, tok.Col)
			}
			v, err := p.parseValue()
			if err != nil {
				return nil, fmt.Errorf("invalid list element: %w", err)
			}
			list = append(list, v)
		}
		p.lexer.NextToken()
		return list, nil
	}
	return nil, unexpected(tok, "a literal value")
}

// parsePattern reads { a b .. }, { .. a b }, { .. a b .. } or { a b }
func (p *Parser) parsePattern() (atomic.Term, error) {
	open := p.lexer.NextToken()
	leading := p.skipGlob()
	explicit, err := p.parseTerms()
	if err != nil {
		return nil, err
	}
	trailing := p.skipGlob()
	if closing := p.lexer.NextToken(); closing.Type != TokenRightBrace {
		return nil, fmt.Errorf("pattern starting at %d:%d: %w", open.Line, open.Col, unexpected(closing, "'}'"))
	}

	pm := atomic.PatternMatch{Explicit: explicit, IsGlob: leading || trailing}
	switch {
	case leading && trailing:
		pm.Position = atomic.GlobMiddle
	case leading:
		pm.Position = atomic.GlobTail
	default:
		pm.Position = atomic.GlobHead
	}
	return pm, nil
}

func (p *Parser) skipGlob() bool {
	if p.lexer.PeekToken().Type == TokenGlob {
		p.lexer.NextToken()
		return true
	}
	return false
}

// Math operators by precedence, loosest first. Cons and power associate to
// the right, everything else to the left.
var mathLevels = []struct {
	ops   string
	right bool
}{
	{":", true},
	{"&|", false},
	{"+-", false},
	{"*/", false},
	{"^", true},
}

func (p *Parser) parseExpression(level int) (atomic.Term, error) {
	if level == len(mathLevels) {
		return p.parseUnary()
	}
	left, err := p.parseExpression(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekMathOp(mathLevels[level].ops)
		if !ok {
			return left, nil
		}
		p.lexer.NextToken()
		next := level + 1
		if mathLevels[level].right {
			next = level
		}
		right, err := p.parseExpression(next)
		if err != nil {
			return nil, err
		}
		left = atomic.Expression{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) peekMathOp(ops string) (byte, bool) {
	tok := p.lexer.PeekToken()
	switch tok.Type {
	case TokenColon:
		if strings.Contains(ops, ":") {
			return ':', true
		}
	case TokenOperator:
		if strings.Contains(ops, tok.Value) {
			return tok.Value[0], true
		}
	}
	return 0, false
}

func (p *Parser) parseUnary() (atomic.Term, error) {
	tok := p.lexer.PeekToken()
	if tok.Type == TokenOperator && (tok.Value == "-" || tok.Value == "+") {
		p.lexer.NextToken()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return atomic.Expression{Op: tok.Value[0], Right: operand}, nil
	}
	if tok.Type == TokenLeftParen {
		p.lexer.NextToken()
		e, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if closing := p.lexer.NextToken(); closing.Type != TokenRightParen {
			return nil, unexpected(closing, "')'")
		}
		return e, nil
	}
	if !isTermStart(tok.Type) {
		return nil, unexpected(tok, "an operand")
	}
	return p.parseTerm()
}

func (p *Parser) expectEOF() error {
	if p.lexer.PeekToken().Type == TokenEnd {
		p.lexer.NextToken()
	}
	if tok := p.lexer.PeekToken(); tok.Type != TokenEOF {
		return unexpected(tok, "end of input")
	}
	return nil
}

func unexpected(tok Token, want string) error {
	if tok.Type == TokenEOF {
		return fmt.Errorf("unexpected end of input at %d:%d, expected %s", tok.Line, tok.Col, want)
	}
	return fmt.Errorf("unexpected %s at %d:%d, expected %s", describe(tok), tok.Line, tok.Col, want)
}

func describe(tok Token) string {
	if tok.Value != "" {
		return fmt.Sprintf("'%s'", tok.Value)
	}
	return tok.Type.String()
}
