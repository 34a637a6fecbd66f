package executor

import (
	"fmt"
	"time"

	"github.com/wbrown/atomicdb/atomic"
	"github.com/wbrown/atomicdb/atomic/annotations"
)

// ErrMissingRelationID is returned for a rule whose signature does not name
// a relation in second position
var ErrMissingRelationID = atomic.ErrMissingRelationID

// Database is a Store that also accepts new facts and rules
type Database interface {
	Store
	InsertFact(tuple []atomic.Value) error
	InsertRule(name atomic.RelationID, params []atomic.Term, body []atomic.Constraint) error
}

// Evaluate runs one top-level statement. A fact is inserted and a rule
// clause is added, both returning a nil query. A query statement returns a
// Query starting from env; a top-level conjunction becomes the query's
// constraint list.
func Evaluate(db Database, env atomic.Bindings, stmt atomic.Statement, opts ...Option) (*Query, error) {
	var err error
	switch s := stmt.(type) {
	case atomic.FactStatement:
		err = db.InsertFact(s.Values)
	case atomic.RuleStatement:
		var name atomic.RelationID
		var params []atomic.Term
		if name, params, err = s.Relation(); err == nil {
			err = db.InsertRule(name, params, s.Body)
		}
	case atomic.QueryStatement:
		constraints := []atomic.Constraint{s.Constraint}
		if and, ok := s.Constraint.(atomic.Intersections); ok && len(and) > 0 {
			constraints = and
		}
		return NewQuery(db, constraints, env, opts...), nil
	default:
		err = fmt.Errorf("unsupported statement %T", stmt)
	}
	if err != nil {
		reportStatementError(buildOptions(opts).Handler, stmt, err)
		return nil, err
	}
	return nil, nil
}

func reportStatementError(h annotations.Handler, stmt atomic.Statement, err error) {
	if h == nil {
		return
	}
	annotations.NewCollector(h).Add(annotations.Event{
		Name:  annotations.ErrorStatement,
		Start: time.Now(),
		Data: map[string]interface{}{
			"statement": stmt.String(),
			"error":     err.Error(),
		},
	})
}

// Binding is one variable of a projected solution. Value is the resolved
// term, or the variable itself when the solution leaves it free.
type Binding struct {
	Name  atomic.Variable
	Value atomic.Term
}

func (b Binding) String() string {
	return string(b.Name) + " ~ " + b.Value.String()
}

// Project resolves vars in env for display
func Project(env atomic.Bindings, vars []atomic.Variable) []Binding {
	out := make([]Binding, len(vars))
	for i, v := range vars {
		out[i] = Binding{Name: v, Value: ground(v, env)}
	}
	return out
}
