package atomic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTupleEncoding(t *testing.T) {
	tuple := []Value{
		Text("alice"),
		Int(-1234567890123),
		mustFloat(t, "-0.075"),
		Rel("parent_of"),
		List{Int(1), List{Text("nested")}, List{}},
	}

	data := TupleBytes(tuple)
	decoded, err := TupleFromBytes(data)
	require.NoError(t, err)
	require.Len(t, decoded, len(tuple))

	for i := range tuple {
		assert.True(t, Equal(tuple[i], decoded[i]), "element %d: %s != %s", i, tuple[i], decoded[i])
		assert.Equal(t, Type(tuple[i]), Type(decoded[i]))
	}
}

func TestTupleDecodingErrors(t *testing.T) {
	data := TupleBytes([]Value{Text("abc")})

	_, err := TupleFromBytes(data[:len(data)-1])
	assert.Error(t, err, "truncated input")

	_, err = TupleFromBytes(append(data, 0))
	assert.Error(t, err, "trailing bytes")

	_, _, err = DecodeValue([]byte{0xff})
	assert.Error(t, err, "unknown type tag")
}
