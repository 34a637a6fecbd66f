package unify

import (
	"errors"

	"github.com/wbrown/atomicdb/atomic"
)

// operandState classifies a comparison operand after resolution
type operandState int

const (
	resolved operandState = iota
	unresolved
	invalid
)

// Compare reports whether op holds between a and b under env.
//
// An operand that is still an unbound variable, or an expression over
// unbound variables, satisfies the comparison trivially. Operands that can
// never be ordered (list patterns, failing expressions, values of
// incompatible kinds) do not.
func Compare(op atomic.CompareOp, a, b atomic.Term, env atomic.Lookup) bool {
	av, as := resolveOperand(a, env)
	bv, bs := resolveOperand(b, env)
	if as == invalid || bs == invalid {
		return false
	}
	if as == unresolved || bs == unresolved {
		return true
	}
	c, ok := atomic.Compare(av, bv)
	return ok && op.Holds(c)
}

func resolveOperand(t atomic.Term, env atomic.Lookup) (atomic.Value, operandState) {
	switch v := atomic.Walk(env, t).(type) {
	case atomic.Literal:
		return v.Value, resolved
	case atomic.Variable:
		return nil, unresolved
	case atomic.Expression:
		val, err := v.Evaluate(env)
		if errors.Is(err, atomic.ErrUnresolved) {
			return nil, unresolved
		}
		if err != nil {
			return nil, invalid
		}
		return val, resolved
	}
	return nil, invalid
}
