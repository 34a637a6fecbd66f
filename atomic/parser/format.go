package parser

import (
	"strings"

	"github.com/wbrown/atomicdb/atomic"
)

// FormatStatement renders a statement in source form, '.' included
func FormatStatement(s atomic.Statement) string {
	return s.String()
}

// FormatConstraint renders a constraint in source form
func FormatConstraint(c atomic.Constraint) string {
	return c.String()
}

// FormatClause renders a clause as "params : body", the form ParseClause
// reads back
func FormatClause(c atomic.Clause) string {
	return c.String()
}

// FormatRule renders a clause of the named rule as a rule statement
func FormatRule(name atomic.RelationID, c atomic.Clause) string {
	signature := make([]atomic.Term, 0, len(c.Params)+1)
	if len(c.Params) > 0 {
		signature = append(signature, c.Params[0])
	}
	signature = append(signature, atomic.Lit(name))
	if len(c.Params) > 1 {
		signature = append(signature, c.Params[1:]...)
	}
	return atomic.RuleStatement{Signature: signature, Body: c.Body}.String()
}

// FormatFact renders a stored tuple of the named relation as a fact
// statement
func FormatFact(name atomic.RelationID, tuple []atomic.Value) string {
	values := make([]atomic.Value, 0, len(tuple)+1)
	if len(tuple) > 0 {
		values = append(values, tuple[0])
	}
	values = append(values, name)
	if len(tuple) > 1 {
		values = append(values, tuple[1:]...)
	}
	return atomic.FactStatement{Values: values}.String()
}

func formatTerms(ts []atomic.Term) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
