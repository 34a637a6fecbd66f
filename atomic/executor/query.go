// Package executor answers queries against a fact and rule store by
// depth-first backtracking search.
//
// A query is pulled one solution at a time:
//
//	q := executor.NewQuery(db, constraints, atomic.Bindings{})
//	defer q.Close()
//	for q.Next() {
//	    fmt.Println(q.Bindings())
//	}
//
// Nothing is computed ahead of the caller. Abandoning a query after any
// number of solutions simply drops its search state.
package executor

import (
	"strings"

	"github.com/wbrown/atomicdb/atomic"
)

// Query enumerates the solutions of a list of constraints. Solving keeps an
// explicit stack with one solver per constraint that has a pending
// environment. A Query is not safe for concurrent use; independent queries
// may run concurrently against one store.
type Query struct {
	r           *runner
	constraints []atomic.Constraint
	start       atomic.Bindings
	depth       int

	stack   []solver
	started bool

	top      bool
	finished bool
	current  atomic.Bindings
	count    int
}

// NewQuery prepares a query over constraints, starting from env. The search
// does not begin until the first call to Next.
func NewQuery(store Store, constraints []atomic.Constraint, env atomic.Bindings, opts ...Option) *Query {
	o := buildOptions(opts)
	r := &runner{store: store, opts: o, ctx: NewContext(o.Handler)}
	q := r.query(constraints, env, 0)
	q.top = true
	r.ctx.QueryBegin(describeQuery(constraints))
	return q
}

func (r *runner) query(constraints []atomic.Constraint, env atomic.Bindings, depth int) *Query {
	return &Query{r: r, constraints: constraints, start: env, depth: depth}
}

// Next advances to the next solution. It returns false once the search
// space is exhausted or the query has been closed.
func (q *Query) Next() bool {
	if q.finished {
		return false
	}
	env, ok := q.advance()
	if !ok {
		q.finish()
		return false
	}
	q.current = env
	q.count++
	q.r.ctx.QuerySolution(q.count-1, env)
	return true
}

// Bindings returns the full environment of the current solution
func (q *Query) Bindings() atomic.Bindings {
	return q.current
}

// Count returns the number of solutions produced so far
func (q *Query) Count() int {
	return q.count
}

// Context returns the annotation context of the query
func (q *Query) Context() Context {
	return q.r.ctx
}

// Close abandons the search. It is idempotent.
func (q *Query) Close() error {
	q.finish()
	return nil
}

// All drains the remaining solutions
func (q *Query) All() []atomic.Bindings {
	var out []atomic.Bindings
	for q.Next() {
		out = append(out, q.current)
	}
	return out
}

func (q *Query) finish() {
	if q.finished {
		return
	}
	q.finished = true
	q.stack = nil
	if q.top {
		q.r.ctx.QueryComplete(q.count, nil)
	}
}

// advance runs the search until the next environment that satisfies every
// constraint. With k solvers on the stack, a success from the top solver
// either completes a solution (k equals the number of constraints) or seeds
// a solver for constraint k. Exhausted solvers are popped, which resumes the
// solver below them.
func (q *Query) advance() (atomic.Bindings, bool) {
	n := len(q.constraints)
	if n == 0 {
		return atomic.Bindings{}, false
	}
	for {
		k := len(q.stack)
		if k == 0 {
			if q.started {
				return atomic.Bindings{}, false
			}
			q.started = true
			q.stack = append(q.stack, q.r.solve(q.constraints[0], q.start, q.depth))
			continue
		}

		res, ok := q.stack[k-1].next()
		if !ok {
			q.stack[k-1] = nil
			q.stack = q.stack[:k-1]
			continue
		}
		if res.Failed {
			continue
		}
		if k == n {
			return res.Bindings, true
		}
		q.stack = append(q.stack, q.r.solve(q.constraints[k], res.Bindings, q.depth))
	}
}

func describeQuery(cs []atomic.Constraint) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
