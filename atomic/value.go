// Package atomic holds the data model of the deductive database: literal
// values, bindable terms, binding environments, constraints and statements.
package atomic

import (
	"fmt"
	"math/big"
	"strings"
)

// Value is a literal that can be stored in a fact or bound to a variable.
// Valid value types:
// - Text
// - Number
// - Float
// - RelationID
// - List
type Value interface {
	String() string
	isValue()
}

// Text is a string literal
type Text string

// RelationID is a case-normalized identifier. It names relations and is
// also usable as an ordinary symbolic value.
type RelationID string

// Number is an arbitrary-precision signed integer
type Number struct {
	n *big.Int
}

// Float is a decimal with an arbitrary-precision whole part and an
// arbitrary-precision unsigned run of decimal digits. The sign is kept apart
// from the whole part so that values such as -0.5 survive.
type Float struct {
	neg   bool
	whole *big.Int // absolute value
	frac  string   // decimal digits, no trailing zeros
}

// List is an ordered sequence of values
type List []Value

func (Text) isValue()       {}
func (RelationID) isValue() {}
func (Number) isValue()     {}
func (Float) isValue()      {}
func (List) isValue()       {}

// NewRelationID normalizes an identifier into a RelationID
func NewRelationID(s string) RelationID {
	return RelationID(strings.ToUpper(s))
}

// Rel is shorthand for NewRelationID
func Rel(s string) RelationID { return NewRelationID(s) }

// Int creates a Number from an int64
func Int(i int64) Number { return Number{n: big.NewInt(i)} }

// NewNumber creates a Number holding a copy of n
func NewNumber(n *big.Int) Number {
	return Number{n: new(big.Int).Set(n)}
}

// Big returns a copy of the integer
func (n Number) Big() *big.Int {
	if n.n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(n.n)
}

// IsZero reports whether the number is zero
func (n Number) IsZero() bool {
	return n.n == nil || n.n.Sign() == 0
}

// NewFloat builds a Float from a sign, the absolute whole part and the
// decimal digits after the point.
func NewFloat(neg bool, whole *big.Int, frac string) (Float, error) {
	for _, r := range frac {
		if r < '0' || r > '9' {
			return Float{}, fmt.Errorf("invalid decimal digits %q", frac)
		}
	}
	w := new(big.Int)
	if whole != nil {
		w.Abs(whole)
	}
	frac = strings.TrimRight(frac, "0")
	// -0.0 is just 0.0
	if w.Sign() == 0 && frac == "" {
		neg = false
	}
	return Float{neg: neg, whole: w, frac: frac}, nil
}

// ParseFloat parses decimal notation such as "12.50" or "-0.25"
func ParseFloat(s string) (Float, error) {
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	wholeStr, frac, _ := strings.Cut(s, ".")
	whole := new(big.Int)
	if wholeStr != "" {
		if _, ok := whole.SetString(wholeStr, 10); !ok {
			return Float{}, fmt.Errorf("invalid float %q", s)
		}
	}
	return NewFloat(neg, whole, frac)
}

// Whole returns the signed whole part
func (f Float) Whole() *big.Int {
	w := new(big.Int)
	if f.whole != nil {
		w.Set(f.whole)
	}
	if f.neg {
		w.Neg(w)
	}
	return w
}

// Frac returns the decimal digits after the point
func (f Float) Frac() string { return f.frac }

// Negative reports whether the float is below zero
func (f Float) Negative() bool { return f.neg }

// Rat returns the exact rational value of the float
func (f Float) Rat() *big.Rat {
	r := new(big.Rat)
	if f.whole != nil {
		r.SetInt(f.whole)
	}
	if f.frac != "" {
		num, _ := new(big.Int).SetString(f.frac, 10)
		den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(f.frac))), nil)
		r.Add(r, new(big.Rat).SetFrac(num, den))
	}
	if f.neg {
		r.Neg(r)
	}
	return r
}

// String returns the canonical source form of a Text
func (t Text) String() string { return quoteText(string(t)) }

// String returns the RelationID in the lower-case form the parser accepts
func (r RelationID) String() string { return strings.ToLower(string(r)) }

func (n Number) String() string {
	if n.n == nil {
		return "0"
	}
	return n.n.String()
}

func (f Float) String() string {
	var sb strings.Builder
	if f.neg {
		sb.WriteByte('-')
	}
	if f.whole == nil {
		sb.WriteByte('0')
	} else {
		sb.WriteString(f.whole.String())
	}
	sb.WriteByte('.')
	if f.frac == "" {
		sb.WriteByte('0')
	} else {
		sb.WriteString(f.frac)
	}
	return sb.String()
}

func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func quoteText(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
