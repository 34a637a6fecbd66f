package atomic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bin(op byte, l, r Term) Expression { return Expression{Op: op, Left: l, Right: r} }

func TestExpressionEvaluate(t *testing.T) {
	env := NewBindings(map[Variable]Term{
		"X": Lit(Int(7)),
		"Y": Var("X"),
		"L": Lit(List{Int(2), Int(3)}),
	})

	tests := []struct {
		name string
		expr Expression
		want string
	}{
		{"addition", bin('+', Var("X"), Lit(Int(1))), "8"},
		{"through variable chain", bin('*', Var("Y"), Lit(Int(2))), "14"},
		{"exact division stays integral", bin('/', Lit(Int(8)), Lit(Int(2))), "4"},
		{"inexact division becomes float", bin('/', Var("X"), Lit(Int(2))), "3.5"},
		{"mixed kinds produce float", bin('+', Lit(Int(1)), Lit(mustFloat(t, "0.25"))), "1.25"},
		{"power", bin('^', Lit(Int(2)), Lit(Int(10))), "1024"},
		{"bitwise and", bin('&', Lit(Int(6)), Lit(Int(3))), "2"},
		{"bitwise or", bin('|', Lit(Int(4)), Lit(Int(1))), "5"},
		{"cons", bin(':', Lit(Int(1)), Var("L")), "[1 2 3]"},
		{"text concatenation", bin('+', Lit(Text("ab")), Lit(Text("cd"))), `"abcd"`},
		{"unary minus", Expression{Op: '-', Right: Var("X")}, "-7"},
		{"nested", bin('-', bin('*', Var("X"), Var("X")), Lit(Int(9))), "40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.expr.Evaluate(env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestExpressionErrors(t *testing.T) {
	_, err := bin('+', Var("Unbound"), Lit(Int(1))).Evaluate(Bindings{})
	assert.ErrorIs(t, err, ErrUnresolved)

	_, err = bin('/', Lit(Int(1)), Lit(Int(0))).Evaluate(Bindings{})
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = bin('-', Lit(Text("a")), Lit(Int(1))).Evaluate(Bindings{})
	assert.Error(t, err)

	_, ok := Resolve(Bindings{}, bin('/', Lit(Int(1)), Lit(Int(0))))
	assert.False(t, ok)
}

func TestExpressionString(t *testing.T) {
	e := bin('*', bin('+', Var("X"), Lit(Int(1))), Lit(Int(2)))
	assert.Equal(t, "$((X + 1) * 2)", e.String())
}
