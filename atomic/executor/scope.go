package executor

import (
	"fmt"

	"github.com/wbrown/atomicdb/atomic"
	"github.com/wbrown/atomicdb/atomic/unify"
)

// frame is the state of one rule call. The caller's variables live in
// outer and the clause's variables in inner; the two namespaces never mix,
// so a clause parameter named X is unrelated to a caller variable named X.
type frame struct {
	outer atomic.Bindings
	inner atomic.Bindings
	links []link
}

// link pairs a call-site argument with a clause parameter whose value is
// only known once the body has produced a solution.
type link struct {
	arg   atomic.Term
	param atomic.Term
}

// split unifies call-site arguments with clause parameters. Bindings of
// caller variables go to the outer environment and bindings of clause
// variables to the inner one. A pair that cannot be settled yet, such as
// two free variables, becomes a link that reduce resolves later.
func split(args, params []atomic.Term, caller atomic.Bindings) (frame, bool) {
	f := frame{outer: caller}
	n := len(args)
	if len(params) < n {
		n = len(params)
	}
	for i := 0; i < n; i++ {
		a := ground(args[i], f.outer)
		p := ground(params[i], f.inner)
		if deferred(a, p) {
			f.links = append(f.links, link{arg: args[i], param: params[i]})
			continue
		}
		if !f.bind(a, p) {
			return f, false
		}
	}
	return f, f.settle()
}

// settle retries links whose sides have become known through later
// arguments, until no further link can be resolved
func (f *frame) settle() bool {
	for progress := true; progress; {
		progress = false
		pending := f.links[:0]
		for _, l := range f.links {
			a := ground(l.arg, f.outer)
			p := ground(l.param, f.inner)
			if deferred(a, p) {
				pending = append(pending, l)
				continue
			}
			if !f.bind(a, p) {
				return false
			}
			progress = true
		}
		f.links = pending
	}
	return true
}

// bind unifies two grounded terms and routes the new bindings to the side
// they belong to
func (f *frame) bind(a, p atomic.Term) bool {
	delta, hand, ok := unify.Unify(a, p, atomic.Bindings{}, atomic.Bindings{})
	if !ok {
		return false
	}
	if delta.IsEmpty() {
		return true
	}
	switch hand {
	case unify.Left:
		f.outer, ok = f.outer.Extend(delta)
	case unify.Right:
		f.inner, ok = f.inner.Extend(delta)
	default:
		panic(fmt.Sprintf("executor: bindings %s from %s ~ %s have no side", delta, a, p))
	}
	return ok
}

// reduce carries one body solution back into the caller. Each linked
// parameter is resolved in the solution and unified with its argument;
// every other clause variable stays behind. Arguments whose parameters
// the body left as the same free variable are unified with each other.
func (f frame) reduce(solution atomic.Bindings) (atomic.Bindings, bool) {
	env := f.outer
	var aliases map[atomic.Variable]atomic.Term
	for _, l := range f.links {
		p := ground(l.param, solution)
		if v, free := p.(atomic.Variable); free {
			first, seen := aliases[v]
			if !seen {
				if aliases == nil {
					aliases = make(map[atomic.Variable]atomic.Term)
				}
				aliases[v] = l.arg
				continue
			}
			var ok bool
			if env, ok = alias(first, l.arg, env); !ok {
				return env, false
			}
			continue
		}
		a := ground(l.arg, env)
		delta, hand, ok := unify.Unify(a, p, atomic.Bindings{}, atomic.Bindings{})
		if !ok {
			return env, false
		}
		if hand != unify.Left {
			// Clause variables left free in a pattern; nothing to carry.
			continue
		}
		if env, ok = env.Extend(delta); !ok {
			return env, false
		}
	}
	return env, true
}

// alias unifies two call-site arguments in the caller's environment.
// Arguments that are still unevaluable expressions are left alone.
func alias(a, b atomic.Term, env atomic.Bindings) (atomic.Bindings, bool) {
	if _, ok := ground(a, env).(atomic.Expression); ok {
		return env, true
	}
	if _, ok := ground(b, env).(atomic.Expression); ok {
		return env, true
	}
	delta, _, ok := unify.Unify(a, b, atomic.Bindings{}, env)
	if !ok {
		return env, false
	}
	return env.Extend(delta)
}

// deferred reports whether a pair must wait for the body: one side is a
// free variable facing something other than a value, or an expression
// cannot be evaluated yet
func deferred(a, p atomic.Term) bool {
	_, aLit := a.(atomic.Literal)
	_, pLit := p.(atomic.Literal)
	_, aVar := a.(atomic.Variable)
	_, pVar := p.(atomic.Variable)
	_, aExpr := a.(atomic.Expression)
	_, pExpr := p.(atomic.Expression)
	return (aVar && !pLit) || (pVar && !aLit) || aExpr || pExpr
}

// ground replaces bound variables in t with their values under env.
// Expressions that can be evaluated become literals.
func ground(t atomic.Term, env atomic.Lookup) atomic.Term {
	switch v := atomic.Walk(env, t).(type) {
	case atomic.PatternMatch:
		explicit := make([]atomic.Term, len(v.Explicit))
		for i, sub := range v.Explicit {
			explicit[i] = ground(sub, env)
		}
		return atomic.PatternMatch{Explicit: explicit, IsGlob: v.IsGlob, Position: v.Position}
	case atomic.Expression:
		if val, err := v.Evaluate(env); err == nil {
			return atomic.Lit(val)
		}
		out := v
		if v.Left != nil {
			out.Left = ground(v.Left, env)
		}
		out.Right = ground(v.Right, env)
		return out
	default:
		return v
	}
}
