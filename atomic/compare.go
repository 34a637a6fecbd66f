package atomic

import (
	"math/big"
	"strings"
)

// Equal reports whether two values are equal.
//
// Numbers and Floats compare across kinds: a Float equals a Number when its
// decimal part is zero and the whole parts match. RelationIDs compare
// case-insensitively and Lists compare elementwise. Any other pairing of
// kinds is unequal.
func Equal(a, b Value) bool {
	switch l := a.(type) {
	case Text:
		r, ok := b.(Text)
		return ok && l == r
	case RelationID:
		r, ok := b.(RelationID)
		return ok && strings.EqualFold(string(l), string(r))
	case Number, Float:
		lr, _ := numericRat(l)
		rr, ok := numericRat(b)
		return ok && lr.Cmp(rr) == 0
	case List:
		r, ok := b.(List)
		if !ok || len(l) != len(r) {
			return false
		}
		for i := range l {
			if !Equal(l[i], r[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders two values and returns:
//
//	-1 if left < right
//	 0 if left == right
//	 1 if left > right
//
// The second result is false when the values have no defined order. Text
// orders lexicographically and Number/Float numerically; Lists and
// RelationIDs only support equality.
func Compare(a, b Value) (int, bool) {
	switch l := a.(type) {
	case Text:
		if r, ok := b.(Text); ok {
			return strings.Compare(string(l), string(r)), true
		}
	case Number, Float:
		lr, _ := numericRat(l)
		if rr, ok := numericRat(b); ok {
			return lr.Cmp(rr), true
		}
	case RelationID, List:
		if Equal(a, b) {
			return 0, true
		}
	}
	return 0, false
}

// numericRat converts Number and Float values to an exact rational
func numericRat(v Value) (*big.Rat, bool) {
	switch n := v.(type) {
	case Number:
		return new(big.Rat).SetInt(n.Big()), true
	case Float:
		return n.Rat(), true
	}
	return nil, false
}
