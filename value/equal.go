package value

import (
	"bytes"
	"math"
	"reflect"
)

// Equal reports whether a and b are the same variant with the same payload.
// Floats compare by bit pattern, so NaN equals an identical NaN and +0 does
// not equal -0. Functions are equal only when both are nil or share the
// same code pointer.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case Null:
		return true
	case Short:
		return x == b.(Short)
	case Int:
		return x == b.(Int)
	case Long:
		return x == b.(Long)
	case Float:
		return math.Float32bits(float32(x)) == math.Float32bits(float32(b.(Float)))
	case Double:
		return math.Float64bits(float64(x)) == math.Float64bits(float64(b.(Double)))
	case Bool:
		return x == b.(Bool)
	case Char:
		return x == b.(Char)
	case Str:
		return x == b.(Str)
	case Buffer:
		return bytes.Equal(x, b.(Buffer))
	case Array:
		y := b.(Array)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Pointer:
		return Equal(x.Elem, b.(Pointer).Elem)
	case Function:
		y := b.(Function)
		if x == nil || y == nil {
			return x == nil && y == nil
		}
		return reflect.ValueOf(x).Pointer() == reflect.ValueOf(y).Pointer()
	}
	return false
}
