package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is one of the variant types declared in this package.
type Value interface {
	Kind() Kind
	String() string
	isValue()
}

type (
	// Null is the absence of a value.
	Null struct{}

	Short  int16
	Int    int32
	Long   int64
	Float  float32
	Double float64
	Bool   bool

	// Char is a single character. Values decoded from the runtime are
	// always in the range U+0000..U+00FF.
	Char rune

	// Str is an owned text string. It may contain any bytes, including NUL.
	Str string

	Array  []Value
	Buffer []byte

	// Pointer boxes a value behind an indirection owned by the pointer.
	Pointer struct {
		Elem Value
	}

	// Function is a native callable value.
	Function func(Value) Value
)

func (Null) isValue()     {}
func (Short) isValue()    {}
func (Int) isValue()      {}
func (Long) isValue()     {}
func (Float) isValue()    {}
func (Double) isValue()   {}
func (Bool) isValue()     {}
func (Char) isValue()     {}
func (Str) isValue()      {}
func (Array) isValue()    {}
func (Buffer) isValue()   {}
func (Pointer) isValue()  {}
func (Function) isValue() {}

func (Null) Kind() Kind     { return KindNull }
func (Short) Kind() Kind    { return KindShort }
func (Int) Kind() Kind      { return KindInt }
func (Long) Kind() Kind     { return KindLong }
func (Float) Kind() Kind    { return KindFloat }
func (Double) Kind() Kind   { return KindDouble }
func (Bool) Kind() Kind     { return KindBool }
func (Char) Kind() Kind     { return KindChar }
func (Str) Kind() Kind      { return KindStr }
func (Array) Kind() Kind    { return KindArray }
func (Buffer) Kind() Kind   { return KindBuffer }
func (Pointer) Kind() Kind  { return KindPointer }
func (Function) Kind() Kind { return KindFunction }

func (Null) String() string     { return "null" }
func (v Short) String() string  { return strconv.FormatInt(int64(v), 10) }
func (v Int) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Long) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string  { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (v Double) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Bool) String() string   { return strconv.FormatBool(bool(v)) }
func (v Char) String() string   { return strconv.QuoteRune(rune(v)) }
func (v Str) String() string    { return strconv.Quote(string(v)) }
func (v Buffer) String() string { return fmt.Sprintf("buffer(%d)", len(v)) }

func (v Array) String() string {
	parts := make([]string, len(v))
	for i, e := range v {
		if e == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v Pointer) String() string {
	if v.Elem == nil {
		return "&<nil>"
	}
	return "&" + v.Elem.String()
}

func (v Function) String() string {
	if v == nil {
		return "function(nil)"
	}
	return "function"
}
