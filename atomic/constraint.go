package atomic

import (
	"strings"
)

// Constraint is a queryable expression. Constraints carry no search state
// and can be shared freely between queries.
type Constraint interface {
	String() string
	isConstraint()
}

// Relation calls a stored relation: facts and rule clauses under Name
type Relation struct {
	Name RelationID
	Args []Term
}

// Unification unifies two term sequences pairwise
type Unification struct {
	Left  []Term
	Right []Term
}

// CompareOp is an ordering operator
type CompareOp int

const (
	LessThan CompareOp = iota
	LessOrEqual
	EqualTo
	GreaterOrEqual
	GreaterThan
)

func (op CompareOp) String() string {
	switch op {
	case LessThan:
		return "<"
	case LessOrEqual:
		return "<="
	case EqualTo:
		return "="
	case GreaterOrEqual:
		return ">="
	case GreaterThan:
		return ">"
	default:
		return "?"
	}
}

// Holds reports whether an ordering result c satisfies the operator
func (op CompareOp) Holds(c int) bool {
	switch op {
	case LessThan:
		return c < 0
	case LessOrEqual:
		return c <= 0
	case EqualTo:
		return c == 0
	case GreaterOrEqual:
		return c >= 0
	case GreaterThan:
		return c > 0
	}
	return false
}

// Comparison orders two terms
type Comparison struct {
	Op    CompareOp
	Left  Term
	Right Term
}

// Not is closed-world negation
type Not struct {
	Inner Constraint
}

// Alternatives is a logical OR, enumerated in order
type Alternatives []Constraint

// Intersections is a logical AND, solved left to right
type Intersections []Constraint

// Fail never holds
type Fail struct{}

// Succeed always holds once
type Succeed struct{}

func (Relation) isConstraint()      {}
func (Unification) isConstraint()   {}
func (Comparison) isConstraint()    {}
func (Not) isConstraint()           {}
func (Alternatives) isConstraint()  {}
func (Intersections) isConstraint() {}
func (Fail) isConstraint()          {}
func (Succeed) isConstraint()       {}

// Call builds a relation constraint in source order: the first argument,
// then the relation name, then the remaining arguments.
func Call(first Term, name string, rest ...Term) Relation {
	args := make([]Term, 0, len(rest)+1)
	args = append(args, first)
	args = append(args, rest...)
	return Relation{Name: NewRelationID(name), Args: args}
}

func (r Relation) String() string {
	if len(r.Args) == 0 {
		return r.Name.String()
	}
	parts := []string{r.Args[0].String(), r.Name.String()}
	for _, a := range r.Args[1:] {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}

func (u Unification) String() string {
	return joinTerms(u.Left) + " ~ " + joinTerms(u.Right)
}

func (c Comparison) String() string {
	return c.Left.String() + " " + c.Op.String() + " " + c.Right.String()
}

func (n Not) String() string {
	return "!(" + n.Inner.String() + ")"
}

func (a Alternatives) String() string {
	return "(" + joinConstraints(a, "; ") + ")"
}

func (i Intersections) String() string {
	return "(" + joinConstraints(i, ", ") + ")"
}

func (Fail) String() string    { return "fail" }
func (Succeed) String() string { return "succeed" }

func joinTerms(ts []Term) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

func joinConstraints(cs []Constraint, sep string) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, sep)
}

// Variables lists the variables of the constraints in order of first
// appearance.
func Variables(cs ...Constraint) []Variable {
	seen := make(map[Variable]bool)
	var out []Variable
	for _, c := range cs {
		out = constraintVariables(c, seen, out)
	}
	return out
}

func constraintVariables(c Constraint, seen map[Variable]bool, out []Variable) []Variable {
	switch v := c.(type) {
	case Relation:
		for _, t := range v.Args {
			out = termVariables(t, seen, out)
		}
	case Unification:
		for _, t := range v.Left {
			out = termVariables(t, seen, out)
		}
		for _, t := range v.Right {
			out = termVariables(t, seen, out)
		}
	case Comparison:
		out = termVariables(v.Left, seen, out)
		out = termVariables(v.Right, seen, out)
	case Not:
		out = constraintVariables(v.Inner, seen, out)
	case Alternatives:
		for _, sub := range v {
			out = constraintVariables(sub, seen, out)
		}
	case Intersections:
		for _, sub := range v {
			out = constraintVariables(sub, seen, out)
		}
	}
	return out
}
