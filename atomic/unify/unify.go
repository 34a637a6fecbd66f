// Package unify implements structural unification of terms against binding
// environments, including glob matching of list patterns and the ordered
// comparison used by comparison constraints.
//
// Failure is an ordinary result, never an error: every function reports
// success with a boolean and, on failure, still returns the bindings it had
// accumulated before the mismatch so callers can see how far a match got.
package unify

import (
	"fmt"

	"github.com/wbrown/atomicdb/atomic"
)

// Hand reports which operand of a unification received the new bindings.
// Rule invocation uses it to route a binding to the caller or the callee.
type Hand int

const (
	// Unknown means no operand was bound
	Unknown Hand = iota
	// Left means the bindings belong to the left operand's variables
	Left
	// Right means the bindings belong to the right operand's variables
	Right
)

func (h Hand) String() string {
	switch h {
	case Unknown:
		return "unknown"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Hand(%d)", int(h))
	}
}

// Flip swaps Left and Right
func (h Hand) Flip() Hand {
	switch h {
	case Left:
		return Right
	case Right:
		return Left
	}
	return h
}

// combine merges the hands of two successive steps
func combine(a, b Hand) Hand {
	if a == Unknown {
		return b
	}
	if b == Unknown || a == b {
		return a
	}
	// Bindings landed on both sides; nothing routes them as one unit.
	return Unknown
}

// scope looks variables up through a stack of environments, innermost first
type scope []atomic.Bindings

func (s scope) Lookup(name atomic.Variable) (atomic.Term, bool) {
	for _, b := range s {
		if t, ok := b.Lookup(name); ok {
			return t, true
		}
	}
	return nil, false
}

func (s scope) push(b atomic.Bindings) scope {
	out := make(scope, 0, len(s)+1)
	out = append(out, b)
	return append(out, s...)
}

// Unify unifies two terms. current holds the bindings made so far in the
// enclosing operation and outer the environment already in effect; lookups
// consult current first. On success the returned delta holds only the new
// bindings. On failure it holds whatever was bound before the mismatch.
func Unify(a, b atomic.Term, current, outer atomic.Bindings) (atomic.Bindings, Hand, bool) {
	return unify(a, b, scope{current, outer})
}

// UnifySequence unifies two term sequences element by element. The
// sequences are zipped, so the longer one is truncated to the shorter. The
// bindings of each element are visible to the elements after it.
func UnifySequence(as, bs []atomic.Term, current, outer atomic.Bindings) (atomic.Bindings, Hand, bool) {
	delta, hand, _, ok := unifySeq(as, bs, scope{current, outer})
	return delta, hand, ok
}

// UnifyAll unifies two term sequences against env and returns env extended
// with the new bindings. On failure the returned environment is env plus the
// partial bindings accumulated before the first mismatch.
func UnifyAll(as, bs []atomic.Term, env atomic.Bindings) (atomic.Bindings, bool) {
	delta, _, _, ok := unifySeq(as, bs, scope{env})
	out, merged := env.Extend(delta)
	return out, ok && merged
}

func unifySeq(as, bs []atomic.Term, s scope) (atomic.Bindings, Hand, int, bool) {
	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}
	var acc atomic.Bindings
	hand := Unknown
	for i := 0; i < n; i++ {
		delta, h, ok := unify(as[i], bs[i], s.push(acc))
		merged, fits := acc.Extend(delta)
		acc = merged
		if !ok || !fits {
			return acc, hand, i, false
		}
		hand = combine(hand, h)
	}
	return acc, hand, n, true
}

func fail() (atomic.Bindings, Hand, bool) {
	return atomic.Bindings{}, Unknown, false
}

func unify(a, b atomic.Term, s scope) (atomic.Bindings, Hand, bool) {
	switch l := a.(type) {
	case atomic.Literal:
		switch r := b.(type) {
		case atomic.Literal:
			if atomic.Equal(l.Value, r.Value) {
				return atomic.Bindings{}, Unknown, true
			}
			return fail()
		case atomic.Variable:
			return unifyVariable(r, l, s, Right)
		case atomic.PatternMatch:
			list, ok := l.Value.(atomic.List)
			if !ok {
				return fail()
			}
			delta, _, ok := matchPattern(r, list, s)
			return delta, Right, ok
		case atomic.Expression:
			return unifyExpression(r, l, s, Right)
		}

	case atomic.Variable:
		switch r := b.(type) {
		case atomic.Variable:
			return unifyVariables(l, r, s)
		default:
			return unifyVariable(l, r, s, Left)
		}

	case atomic.PatternMatch:
		switch r := b.(type) {
		case atomic.Literal:
			list, ok := r.Value.(atomic.List)
			if !ok {
				return fail()
			}
			delta, _, ok := matchPattern(l, list, s)
			return delta, Left, ok
		case atomic.Variable:
			return unifyVariable(r, l, s, Right)
		}

	case atomic.Expression:
		return unifyExpression(l, b, s, Left)
	}
	return fail()
}

// unifyVariable unifies variable v, sitting on side hand, with a
// non-variable term t on the other side.
func unifyVariable(v atomic.Variable, t atomic.Term, s scope, hand Hand) (atomic.Bindings, Hand, bool) {
	resolved := atomic.Walk(s, v)
	if free, ok := resolved.(atomic.Variable); ok {
		lit, isLit := t.(atomic.Literal)
		if !isLit {
			// An unbound variable only ever binds to a literal value.
			if e, isExpr := t.(atomic.Expression); isExpr {
				val, err := e.Evaluate(s)
				if err != nil {
					return fail()
				}
				lit = atomic.Lit(val)
			} else {
				return fail()
			}
		}
		return atomic.Bindings{}.With(free, lit), hand, true
	}
	// Already bound: unify the value, keeping operand order.
	if hand == Left {
		return unify(resolved, t, s)
	}
	return unify(t, resolved, s)
}

func unifyVariables(x, y atomic.Variable, s scope) (atomic.Bindings, Hand, bool) {
	rx := atomic.Walk(s, x)
	ry := atomic.Walk(s, y)
	fx, xFree := rx.(atomic.Variable)
	fy, yFree := ry.(atomic.Variable)
	switch {
	case xFree && yFree:
		if fx == fy {
			return atomic.Bindings{}, Unknown, true
		}
		return atomic.Bindings{}.With(fx, fy), Left, true
	case xFree:
		return unifyVariable(fx, ry, s, Left)
	case yFree:
		return unifyVariable(fy, rx, s, Right)
	}
	return unify(rx, ry, s)
}

// unifyExpression evaluates e and unifies the result with t. An expression
// that cannot be evaluated fails.
func unifyExpression(e atomic.Expression, t atomic.Term, s scope, hand Hand) (atomic.Bindings, Hand, bool) {
	val, err := e.Evaluate(s)
	if err != nil {
		return fail()
	}
	if hand == Left {
		return unify(atomic.Lit(val), t, s)
	}
	return unify(t, atomic.Lit(val), s)
}
