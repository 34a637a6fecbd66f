package executor

import (
	"fmt"
	"time"

	"github.com/wbrown/atomicdb/atomic"
	"github.com/wbrown/atomicdb/atomic/unify"
)

// Result is one entry produced while solving a constraint. Failed entries
// are part of the sequence so that a caller can see how far a branch got;
// the query driver skips them.
type Result struct {
	Bindings atomic.Bindings
	Failed   bool
}

// solver lazily enumerates the results of one constraint against one
// environment
type solver interface {
	next() (Result, bool)
}

// Store is the read side of the database used while solving
type Store interface {
	Facts(name atomic.RelationID) [][]atomic.Value
	Clauses(name atomic.RelationID) []atomic.Clause
}

// runner carries what every solver of one top-level query shares
type runner struct {
	store Store
	opts  Options
	ctx   Context
}

func (r *runner) solve(c atomic.Constraint, env atomic.Bindings, depth int) solver {
	switch v := c.(type) {
	case atomic.Relation:
		return r.relation(v, env, depth)
	case atomic.Unification:
		out, ok := unify.UnifyAll(v.Left, v.Right, env)
		return &single{res: Result{Bindings: out, Failed: !ok}}
	case atomic.Comparison:
		ok := unify.Compare(v.Op, v.Left, v.Right, env)
		return &single{res: Result{Bindings: env, Failed: !ok}}
	case atomic.Not:
		return &notSolver{r: r, inner: v.Inner, env: env, depth: depth}
	case atomic.Alternatives:
		return &alternatives{r: r, branches: v, env: env, depth: depth}
	case atomic.Intersections:
		return &querySolver{q: r.query(v, env, depth)}
	case atomic.Fail:
		return &single{res: Result{Bindings: env, Failed: true}}
	case atomic.Succeed:
		return &single{res: Result{Bindings: env}}
	}
	panic(fmt.Sprintf("executor: unknown constraint %T", c))
}

// single yields exactly one result
type single struct {
	res  Result
	done bool
}

func (s *single) next() (Result, bool) {
	if s.done {
		return Result{}, false
	}
	s.done = true
	return s.res, true
}

// relationSolver scans the stored facts of a relation in insertion order and
// then tries each clause of its rule in declaration order
type relationSolver struct {
	r     *runner
	call  atomic.Relation
	env   atomic.Bindings
	depth int

	facts   [][]atomic.Value
	fact    int
	matches int
	start   time.Time
	scanned bool

	clauses []atomic.Clause
	clause  int
	frame   frame
	body    *Query
}

func (r *runner) relation(call atomic.Relation, env atomic.Bindings, depth int) *relationSolver {
	return &relationSolver{
		r:       r,
		call:    call,
		env:     env,
		depth:   depth,
		facts:   r.store.Facts(call.Name),
		clauses: r.store.Clauses(call.Name),
		start:   time.Now(),
	}
}

func (s *relationSolver) next() (Result, bool) {
	if s.fact < len(s.facts) {
		tuple := s.facts[s.fact]
		s.fact++
		env, ok := unify.UnifyAll(s.call.Args, atomic.Terms(tuple...), s.env)
		if ok {
			s.matches++
		}
		return Result{Bindings: env, Failed: !ok}, true
	}
	if !s.scanned {
		s.scanned = true
		s.r.ctx.FactsScanned(s.call.Name, s.start, len(s.facts), s.matches)
	}

	for {
		if s.body != nil {
			if solution, ok := s.body.advance(); ok {
				env, ok := s.frame.reduce(solution)
				return Result{Bindings: env, Failed: !ok}, true
			}
			s.body = nil
		}
		if s.clause >= len(s.clauses) {
			return Result{}, false
		}
		index := s.clause
		clause := s.clauses[index]
		s.clause++

		depth := s.depth + 1
		if limit := s.r.opts.MaxDepth; limit > 0 && depth > limit {
			s.r.ctx.RuleDepthExceeded(s.call.Name, depth, limit)
			continue
		}
		f, ok := split(s.call.Args, clause.Params, s.env)
		if !ok {
			s.r.ctx.RuleSplitFailed(s.call.Name, index)
			continue
		}
		s.r.ctx.RuleEntered(s.call.Name, index, depth)
		s.frame = f
		s.body = s.r.query(clause.Body, f.inner, depth)
	}
}

// notSolver is closed-world negation: it holds exactly when the inner
// constraint has no solution, and never binds anything
type notSolver struct {
	r     *runner
	inner atomic.Constraint
	env   atomic.Bindings
	depth int
	done  bool
}

func (s *notSolver) next() (Result, bool) {
	if s.done {
		return Result{}, false
	}
	s.done = true
	inner := s.r.solve(s.inner, s.env, s.depth)
	for {
		res, ok := inner.next()
		if !ok {
			return Result{Bindings: s.env}, true
		}
		if !res.Failed {
			return Result{Bindings: s.env, Failed: true}, true
		}
	}
}

// alternatives concatenates the results of each branch in order
type alternatives struct {
	r        *runner
	branches []atomic.Constraint
	env      atomic.Bindings
	depth    int
	current  solver
}

func (s *alternatives) next() (Result, bool) {
	for {
		if s.current == nil {
			if len(s.branches) == 0 {
				return Result{}, false
			}
			s.current = s.r.solve(s.branches[0], s.env, s.depth)
			s.branches = s.branches[1:]
		}
		if res, ok := s.current.next(); ok {
			return res, true
		}
		s.current = nil
	}
}

// querySolver adapts a nested query; every solution is a success
type querySolver struct {
	q *Query
}

func (s *querySolver) next() (Result, bool) {
	env, ok := s.q.advance()
	if !ok {
		return Result{}, false
	}
	return Result{Bindings: env}, true
}
