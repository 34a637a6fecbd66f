package atomic

import (
	"strings"
)

// Term is a bindable expression: a literal, a logic variable, a list
// pattern or an arithmetic expression. Terms are immutable.
type Term interface {
	String() string
	isTerm()
}

// Literal wraps a value as a term
type Literal struct {
	Value Value
}

// Variable is a named logic variable
type Variable string

// GlobPosition says which part of a list a glob pattern pins down
type GlobPosition int

const (
	// GlobHead matches the explicit terms against the front of the list
	GlobHead GlobPosition = iota
	// GlobTail matches the explicit terms against the end of the list
	GlobTail
	// GlobMiddle matches the explicit terms against any contiguous window
	GlobMiddle
)

func (g GlobPosition) String() string {
	switch g {
	case GlobHead:
		return "head"
	case GlobTail:
		return "tail"
	case GlobMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// PatternMatch matches a List structurally. When IsGlob is false the
// explicit terms line up with the whole list; otherwise Position selects
// which part of the list they constrain.
type PatternMatch struct {
	Explicit []Term
	IsGlob   bool
	Position GlobPosition
}

// Expression is an arithmetic tree over terms. Left is nil for unary
// operators.
type Expression struct {
	Op    byte
	Left  Term
	Right Term
}

func (Literal) isTerm()      {}
func (Variable) isTerm()     {}
func (PatternMatch) isTerm() {}
func (Expression) isTerm()   {}

// Lit wraps a value in a Literal term
func Lit(v Value) Literal { return Literal{Value: v} }

// Var creates a variable term
func Var(name string) Variable { return Variable(name) }

// Terms wraps values as literal terms
func Terms(vs ...Value) []Term {
	ts := make([]Term, len(vs))
	for i, v := range vs {
		ts[i] = Literal{Value: v}
	}
	return ts
}

func (l Literal) String() string {
	if l.Value == nil {
		return "<nil>"
	}
	return l.Value.String()
}

func (v Variable) String() string { return string(v) }

func (p PatternMatch) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	if p.IsGlob && (p.Position == GlobTail || p.Position == GlobMiddle) {
		sb.WriteString(" ..")
	}
	for _, t := range p.Explicit {
		sb.WriteByte(' ')
		sb.WriteString(t.String())
	}
	if p.IsGlob && (p.Position == GlobHead || p.Position == GlobMiddle) {
		sb.WriteString(" ..")
	}
	sb.WriteString(" }")
	return sb.String()
}

func (e Expression) String() string {
	return "$(" + e.inner() + ")"
}

func (e Expression) inner() string {
	if e.Left == nil {
		return string(e.Op) + operandString(e.Right)
	}
	return operandString(e.Left) + " " + string(e.Op) + " " + operandString(e.Right)
}

func operandString(t Term) string {
	if e, ok := t.(Expression); ok {
		return "(" + e.inner() + ")"
	}
	return t.String()
}

// TermsEqual reports whether two terms are structurally identical.
// Literal values compare with Equal.
func TermsEqual(a, b Term) bool {
	switch l := a.(type) {
	case Literal:
		r, ok := b.(Literal)
		return ok && Equal(l.Value, r.Value)
	case Variable:
		r, ok := b.(Variable)
		return ok && l == r
	case PatternMatch:
		r, ok := b.(PatternMatch)
		if !ok || l.IsGlob != r.IsGlob || len(l.Explicit) != len(r.Explicit) {
			return false
		}
		if l.IsGlob && l.Position != r.Position {
			return false
		}
		for i := range l.Explicit {
			if !TermsEqual(l.Explicit[i], r.Explicit[i]) {
				return false
			}
		}
		return true
	case Expression:
		r, ok := b.(Expression)
		if !ok || l.Op != r.Op {
			return false
		}
		if (l.Left == nil) != (r.Left == nil) {
			return false
		}
		if l.Left != nil && !TermsEqual(l.Left, r.Left) {
			return false
		}
		return TermsEqual(l.Right, r.Right)
	}
	return false
}

// termVariables appends the variables of t not already in seen
func termVariables(t Term, seen map[Variable]bool, out []Variable) []Variable {
	switch v := t.(type) {
	case Variable:
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	case PatternMatch:
		for _, sub := range v.Explicit {
			out = termVariables(sub, seen, out)
		}
	case Expression:
		if v.Left != nil {
			out = termVariables(v.Left, seen, out)
		}
		out = termVariables(v.Right, seen, out)
	}
	return out
}
