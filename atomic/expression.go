package atomic

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// MaxFractionDigits bounds the decimal expansion of non-terminating
// division results.
const MaxFractionDigits = 32

var (
	// ErrUnresolved is returned when an expression mentions an unbound variable
	ErrUnresolved = errors.New("expression has unresolved variables")
	// ErrDivisionByZero is returned for x / 0
	ErrDivisionByZero = errors.New("division by zero")
)

// Evaluate computes the expression with variables resolved through l
func (e Expression) Evaluate(l Lookup) (Value, error) {
	right, err := operand(l, e.Right)
	if err != nil {
		return nil, err
	}
	if e.Left == nil {
		return evalUnary(e.Op, right)
	}
	left, err := operand(l, e.Left)
	if err != nil {
		return nil, err
	}
	return evalBinary(e.Op, left, right)
}

func operand(l Lookup, t Term) (Value, error) {
	switch v := Walk(l, t).(type) {
	case Literal:
		return v.Value, nil
	case Expression:
		return v.Evaluate(l)
	case Variable:
		return nil, ErrUnresolved
	default:
		return nil, fmt.Errorf("cannot use %s in an expression", t)
	}
}

func evalUnary(op byte, v Value) (Value, error) {
	r, ok := numericRat(v)
	if !ok {
		return nil, fmt.Errorf("unary %c expects a number, got %s", op, v)
	}
	switch op {
	case '+':
		return v, nil
	case '-':
		return fromRat(new(big.Rat).Neg(r), isNumber(v)), nil
	}
	return nil, fmt.Errorf("unknown unary operator %c", op)
}

func evalBinary(op byte, a, b Value) (Value, error) {
	switch op {
	case ':':
		list, ok := b.(List)
		if !ok {
			return nil, fmt.Errorf("cons expects a list on the right, got %s", b)
		}
		out := make(List, 0, len(list)+1)
		out = append(out, a)
		return append(out, list...), nil
	case '+':
		if at, ok := a.(Text); ok {
			if bt, ok := b.(Text); ok {
				return at + bt, nil
			}
		}
		if al, ok := a.(List); ok {
			if bl, ok := b.(List); ok {
				out := make(List, 0, len(al)+len(bl))
				out = append(out, al...)
				return append(out, bl...), nil
			}
		}
	case '&', '|':
		an, aok := a.(Number)
		bn, bok := b.(Number)
		if !aok || !bok {
			return nil, fmt.Errorf("operator %c expects numbers, got %s and %s", op, a, b)
		}
		if op == '&' {
			return Number{n: new(big.Int).And(an.Big(), bn.Big())}, nil
		}
		return Number{n: new(big.Int).Or(an.Big(), bn.Big())}, nil
	case '^':
		exp, ok := b.(Number)
		if !ok || exp.Big().Sign() < 0 {
			return nil, fmt.Errorf("exponent must be a non-negative integer, got %s", b)
		}
		if an, ok := a.(Number); ok {
			return Number{n: new(big.Int).Exp(an.Big(), exp.Big(), nil)}, nil
		}
		base, ok := numericRat(a)
		if !ok {
			return nil, fmt.Errorf("operator ^ expects a number, got %s", a)
		}
		num := new(big.Int).Exp(base.Num(), exp.Big(), nil)
		den := new(big.Int).Exp(base.Denom(), exp.Big(), nil)
		return fromRat(new(big.Rat).SetFrac(num, den), false), nil
	}

	ar, aok := numericRat(a)
	br, bok := numericRat(b)
	if !aok || !bok {
		return nil, fmt.Errorf("operator %c cannot combine %s and %s", op, a, b)
	}
	integral := isNumber(a) && isNumber(b)
	switch op {
	case '+':
		return fromRat(new(big.Rat).Add(ar, br), integral), nil
	case '-':
		return fromRat(new(big.Rat).Sub(ar, br), integral), nil
	case '*':
		return fromRat(new(big.Rat).Mul(ar, br), integral), nil
	case '/':
		if br.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		q := new(big.Rat).Quo(ar, br)
		return fromRat(q, q.IsInt()), nil
	}
	return nil, fmt.Errorf("unknown operator %c", op)
}

func isNumber(v Value) bool {
	_, ok := v.(Number)
	return ok
}

// fromRat converts a rational back into a Number when integral is set and
// the value is whole, and into a Float otherwise.
func fromRat(r *big.Rat, integral bool) Value {
	if integral && r.IsInt() {
		return Number{n: new(big.Int).Set(r.Num())}
	}
	neg := r.Sign() < 0
	num := new(big.Int).Abs(r.Num())
	den := r.Denom()
	whole, rem := new(big.Int).QuoRem(num, den, new(big.Int))

	var digits strings.Builder
	ten := big.NewInt(10)
	for i := 0; i < MaxFractionDigits && rem.Sign() != 0; i++ {
		rem.Mul(rem, ten)
		d, m := new(big.Int).QuoRem(rem, den, new(big.Int))
		digits.WriteString(d.String())
		rem = m
	}
	f, _ := NewFloat(neg, whole, digits.String())
	return f
}
