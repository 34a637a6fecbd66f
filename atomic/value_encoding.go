package atomic

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// ValueType tags a value in its binary encoding
type ValueType byte

const (
	TypeText ValueType = iota
	TypeNumber
	TypeFloat
	TypeRelationID
	TypeList
)

// Type returns the type of a value
func Type(v Value) ValueType {
	switch val := v.(type) {
	case Text:
		return TypeText
	case Number:
		return TypeNumber
	case Float:
		return TypeFloat
	case RelationID:
		return TypeRelationID
	case List:
		return TypeList
	default:
		panic(fmt.Sprintf("unknown value type: %T", val))
	}
}

// AppendValue appends the binary encoding of v to dst.
//
// Layout: one type byte followed by a type-specific body. Variable-length
// fields (strings, integer magnitudes, list lengths) are prefixed with an
// unsigned varint length.
func AppendValue(dst []byte, v Value) []byte {
	dst = append(dst, byte(Type(v)))
	switch val := v.(type) {
	case Text:
		dst = appendBytes(dst, []byte(val))
	case RelationID:
		dst = appendBytes(dst, []byte(val))
	case Number:
		n := val.Big()
		dst = append(dst, signByte(n.Sign() < 0))
		dst = appendBytes(dst, n.Bytes())
	case Float:
		dst = append(dst, signByte(val.neg))
		whole := val.whole
		if whole == nil {
			whole = new(big.Int)
		}
		dst = appendBytes(dst, whole.Bytes())
		dst = appendBytes(dst, []byte(val.frac))
	case List:
		dst = binary.AppendUvarint(dst, uint64(len(val)))
		for _, item := range val {
			dst = AppendValue(dst, item)
		}
	}
	return dst
}

// DecodeValue decodes one value and returns it along with the number of
// bytes consumed.
func DecodeValue(data []byte) (Value, int, error) {
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("empty value encoding")
	}
	pos := 1
	switch ValueType(data[0]) {
	case TypeText, TypeRelationID:
		body, n, err := readBytes(data[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		if ValueType(data[0]) == TypeText {
			return Text(body), pos, nil
		}
		return RelationID(body), pos, nil
	case TypeNumber:
		if len(data) < pos+1 {
			return nil, 0, fmt.Errorf("number encoding missing sign")
		}
		neg := data[pos] == 1
		pos++
		mag, n, err := readBytes(data[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		i := new(big.Int).SetBytes(mag)
		if neg {
			i.Neg(i)
		}
		return Number{n: i}, pos, nil
	case TypeFloat:
		if len(data) < pos+1 {
			return nil, 0, fmt.Errorf("float encoding missing sign")
		}
		neg := data[pos] == 1
		pos++
		mag, n, err := readBytes(data[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		frac, n, err := readBytes(data[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		f, err := NewFloat(neg, new(big.Int).SetBytes(mag), string(frac))
		if err != nil {
			return nil, 0, err
		}
		return f, pos, nil
	case TypeList:
		count, n := binary.Uvarint(data[pos:])
		if n <= 0 {
			return nil, 0, fmt.Errorf("invalid list length")
		}
		pos += n
		list := make(List, 0, count)
		for i := uint64(0); i < count; i++ {
			item, n, err := DecodeValue(data[pos:])
			if err != nil {
				return nil, 0, fmt.Errorf("list item %d: %w", i, err)
			}
			pos += n
			list = append(list, item)
		}
		return list, pos, nil
	default:
		return nil, 0, fmt.Errorf("unknown value type: %v", data[0])
	}
}

// TupleBytes encodes a fact tuple
func TupleBytes(vs []Value) []byte {
	dst := binary.AppendUvarint(nil, uint64(len(vs)))
	for _, v := range vs {
		dst = AppendValue(dst, v)
	}
	return dst
}

// TupleFromBytes decodes a tuple produced by TupleBytes
func TupleFromBytes(data []byte) ([]Value, error) {
	count, pos := binary.Uvarint(data)
	if pos <= 0 {
		return nil, fmt.Errorf("invalid tuple length")
	}
	out := make([]Value, 0, count)
	for i := uint64(0); i < count; i++ {
		v, n, err := DecodeValue(data[pos:])
		if err != nil {
			return nil, fmt.Errorf("tuple element %d: %w", i, err)
		}
		pos += n
		out = append(out, v)
	}
	if pos != len(data) {
		return nil, fmt.Errorf("trailing %d bytes after tuple", len(data)-pos)
	}
	return out, nil
}

func signByte(neg bool) byte {
	if neg {
		return 1
	}
	return 0
}

func appendBytes(dst, b []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(b)))
	return append(dst, b...)
}

func readBytes(data []byte) ([]byte, int, error) {
	l, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, 0, fmt.Errorf("invalid length prefix")
	}
	end := n + int(l)
	if end > len(data) {
		return nil, 0, fmt.Errorf("length %d exceeds remaining %d bytes", l, len(data)-n)
	}
	return data[n:end], end, nil
}
