package value

import (
	"reflect"
)

// Native is the set of Go types with a direct Value conversion.
type Native interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64 | ~bool | ~string
}

func FromShort(v int16) Value    { return Short(v) }
func FromInt(v int32) Value      { return Int(v) }
func FromLong(v int64) Value     { return Long(v) }
func FromFloat(v float32) Value  { return Float(v) }
func FromDouble(v float64) Value { return Double(v) }
func FromBool(v bool) Value      { return Bool(v) }
func FromString(v string) Value  { return Str(v) }

// FromChar converts a one-byte foreign character. The byte is read as
// unsigned so 0x80..0xFF map to U+0080..U+00FF.
func FromChar(v int8) Value {
	return Char(rune(uint8(v)))
}

// Of converts any Native value, including named types over a native type.
// int8 is the foreign one-byte char and converts like FromChar.
func Of[T Native](v T) Value {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int8:
		return FromChar(int8(rv.Int()))
	case reflect.Int16:
		return FromShort(int16(rv.Int()))
	case reflect.Int32:
		return FromInt(int32(rv.Int()))
	case reflect.Int64:
		return FromLong(rv.Int())
	case reflect.Float32:
		return FromFloat(float32(rv.Float()))
	case reflect.Float64:
		return FromDouble(rv.Float())
	case reflect.Bool:
		return FromBool(rv.Bool())
	case reflect.String:
		return FromString(rv.String())
	}
	// unreachable: the Native constraint admits no other kinds
	return Null{}
}
