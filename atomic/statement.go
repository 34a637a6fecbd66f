package atomic

import (
	"errors"
	"strings"
)

// ErrMissingRelationID is returned for a rule whose signature has no
// relation id in second position
var ErrMissingRelationID = errors.New("need at least one relation-id keyword in rule signature")

// Clause is one definition of a rule: the parameters it is called with and
// the constraints its body must satisfy.
type Clause struct {
	Params []Term
	Body   []Constraint
}

func (c Clause) String() string {
	return joinTerms(c.Params) + " : " + joinConstraints(c.Body, ", ")
}

// Statement is a top-level unit of source: a fact, a rule or a query
type Statement interface {
	String() string
	isStatement()
}

// FactStatement asserts a tuple. The second value names the relation.
type FactStatement struct {
	Values []Value
}

// RuleStatement defines a clause. The second signature term names the
// relation; the others are the clause parameters.
type RuleStatement struct {
	Signature []Term
	Body      []Constraint
}

// QueryStatement asks for the solutions of a constraint
type QueryStatement struct {
	Constraint Constraint
}

// Relation splits the signature into the relation name and the clause
// parameters.
func (r RuleStatement) Relation() (RelationID, []Term, error) {
	if len(r.Signature) < 2 {
		return "", nil, ErrMissingRelationID
	}
	lit, ok := r.Signature[1].(Literal)
	if !ok {
		return "", nil, ErrMissingRelationID
	}
	name, ok := lit.Value.(RelationID)
	if !ok {
		return "", nil, ErrMissingRelationID
	}
	params := make([]Term, 0, len(r.Signature)-1)
	params = append(params, r.Signature[0])
	params = append(params, r.Signature[2:]...)
	return name, params, nil
}

func (FactStatement) isStatement()  {}
func (RuleStatement) isStatement()  {}
func (QueryStatement) isStatement() {}

func (f FactStatement) String() string {
	parts := make([]string, len(f.Values))
	for i, v := range f.Values {
		parts[i] = v.String()
	}
	return strings.Join(parts, " ") + "."
}

func (r RuleStatement) String() string {
	return joinTerms(r.Signature) + " : " + joinConstraints(r.Body, ", ") + "."
}

func (q QueryStatement) String() string {
	return q.Constraint.String() + "."
}

// Fact builds the tuple for a fact in source order
func Fact(first Value, relation string, rest ...Value) []Value {
	out := make([]Value, 0, len(rest)+2)
	out = append(out, first, NewRelationID(relation))
	return append(out, rest...)
}
