// Package value defines the closed set of values exchanged with a polyglot
// runtime.
//
// Value is a sealed interface: only the variant types in this package
// implement it, and the dynamic type of a Value is the only source of truth
// for how its payload is read. Code that consumes values switches on the
// type, never on the payload shape:
//
//	switch v := v.(type) {
//	case value.Str:
//	    fmt.Println(string(v))
//	case value.Long:
//	    fmt.Println(int64(v))
//	}
//
// # Variants
//
//	Null             no payload
//	Short/Int/Long   int16/int32/int64
//	Float/Double     float32/float64
//	Bool             bool
//	Char             a character decoded from a one-byte foreign char
//	Str              owned text
//	Array            []Value  (no foreign conversion yet)
//	Buffer           []byte   (no foreign conversion yet)
//	Pointer          boxed Value (no foreign conversion yet)
//	Function         func(Value) Value (no foreign conversion yet)
//
// # Conversions
//
// Each native primitive has a total conversion into its variant
// (FromShort, FromInt, ..., FromChar). FromChar takes the foreign one-byte
// representation and reinterprets it as unsigned before widening, so bytes
// at or above 0x80 decode to U+0080..U+00FF instead of negative runes.
// There is no generic reverse conversion; decoding foreign values is driven
// by the runtime's type tag in package bridge.
package value
