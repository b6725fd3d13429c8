package plan

import (
	"math/big"
	"reflect"
	"unicode/utf8"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/wippyai/polycall/value"
)

// valueType wraps a value.Value so typed literals survive HCL evaluation.
var valueType = cty.Capsule("value", reflect.TypeOf((*value.Value)(nil)).Elem())

func wrap(v value.Value) cty.Value {
	return cty.CapsuleVal(valueType, &v)
}

func unwrap(v cty.Value) (value.Value, bool) {
	if v.Type() != valueType || v.IsNull() || !v.IsKnown() {
		return nil, false
	}
	return *(v.EncapsulatedValue().(*value.Value)), true
}

// Functions returns the typed literal helpers available in plan files.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"short":  typed(cty.Number, func(v cty.Value) (value.Value, error) { return decodeAs[int16](v, value.FromShort) }),
		"int":    typed(cty.Number, func(v cty.Value) (value.Value, error) { return decodeAs[int32](v, value.FromInt) }),
		"long":   typed(cty.Number, func(v cty.Value) (value.Value, error) { return decodeAs[int64](v, value.FromLong) }),
		"float":  typed(cty.Number, func(v cty.Value) (value.Value, error) { return decodeAs[float32](v, value.FromFloat) }),
		"double": typed(cty.Number, func(v cty.Value) (value.Value, error) { return decodeAs[float64](v, value.FromDouble) }),
		"bool":   typed(cty.Bool, func(v cty.Value) (value.Value, error) { return decodeAs[bool](v, value.FromBool) }),
		"str":    typed(cty.String, func(v cty.Value) (value.Value, error) { return decodeAs[string](v, value.FromString) }),
		"char":   typed(cty.String, charValue),
	}
}

func typed(param cty.Type, conv func(cty.Value) (value.Value, error)) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "v", Type: param}},
		Type:   function.StaticReturnType(valueType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			v, err := conv(args[0])
			if err != nil {
				return cty.NilVal, function.NewArgError(0, err)
			}
			return wrap(v), nil
		},
	})
}

func decodeAs[T any](v cty.Value, build func(T) value.Value) (value.Value, error) {
	var out T
	if err := gocty.FromCtyValue(v, &out); err != nil {
		return nil, err
	}
	return build(out), nil
}

func charValue(v cty.Value) (value.Value, error) {
	s := v.AsString()
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError {
		return nil, function.NewArgErrorf(0, "char needs exactly one character, got %q", s)
	}
	return value.Char(r), nil
}

// fromCty converts an evaluated plan expression to a Value. exact is false
// for plain numbers, whose kind is a guess.
func fromCty(v cty.Value) (out value.Value, exact bool, err error) {
	if !v.IsKnown() {
		return nil, false, errUnknown
	}
	if v.IsNull() {
		return value.Null{}, true, nil
	}
	if w, ok := unwrap(v); ok {
		return w, true, nil
	}

	switch v.Type() {
	case cty.String:
		return value.Str(v.AsString()), true, nil
	case cty.Bool:
		return value.Bool(v.True()), true, nil
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return value.Long(i), false, nil
			}
		}
		f, _ := bf.Float64()
		return value.Double(f), false, nil
	}
	return nil, false, errType(v.Type())
}
