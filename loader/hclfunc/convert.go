package hclfunc

import (
	"fmt"
	"math"
	"math/big"
	"unicode/utf8"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/host"
)

// toCty converts a runtime value to cty. Chars become one-rune strings.
func toCty(d host.Datum) cty.Value {
	switch d.Tag {
	case foreign.TagBool:
		return cty.BoolVal(d.I != 0)
	case foreign.TagChar:
		return cty.StringVal(string(rune(uint8(d.I))))
	case foreign.TagShort, foreign.TagInt, foreign.TagLong:
		return cty.NumberIntVal(d.I)
	case foreign.TagFloat, foreign.TagDouble:
		return cty.NumberFloatVal(d.F)
	case foreign.TagString:
		return cty.StringVal(d.S)
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

// fromCty converts v to a runtime value of tag. TagNull infers the tag
// from the cty type.
func fromCty(v cty.Value, tag foreign.Tag) (host.Datum, error) {
	if !v.IsKnown() {
		return host.Datum{}, fmt.Errorf("result is unknown")
	}
	if v.IsNull() {
		return host.Null(), nil
	}
	if tag == foreign.TagNull {
		tag = inferTag(v)
	}

	switch tag {
	case foreign.TagString:
		s, err := convert.Convert(v, cty.String)
		if err != nil {
			return host.Datum{}, err
		}
		return host.String(s.AsString()), nil

	case foreign.TagBool:
		b, err := convert.Convert(v, cty.Bool)
		if err != nil {
			return host.Datum{}, err
		}
		return host.Bool(b.True()), nil

	case foreign.TagChar:
		if v.Type() == cty.String {
			s := v.AsString()
			r, size := utf8.DecodeRuneInString(s)
			if size == 0 || size != len(s) || r == utf8.RuneError {
				return host.Datum{}, fmt.Errorf("char result needs a single character, got %q", s)
			}
			if r > math.MaxUint8 {
				return host.Datum{}, errors.Overflow(errors.PhaseCall, nil, string(r), tag.String())
			}
			return host.Char(int8(uint8(r))), nil
		}
		fallthrough

	case foreign.TagShort, foreign.TagInt, foreign.TagLong:
		n, err := number(v)
		if err != nil {
			return host.Datum{}, err
		}
		// fractions truncate toward zero
		i, ok := truncate(n)
		if !ok {
			return host.Datum{}, errors.Overflow(errors.PhaseCall, nil, n.Text('g', 20), tag.String())
		}
		d, ok := host.Coerce(host.Long(i), tag)
		if !ok {
			return host.Datum{}, errors.Overflow(errors.PhaseCall, nil, i, tag.String())
		}
		return d, nil

	case foreign.TagFloat, foreign.TagDouble:
		n, err := number(v)
		if err != nil {
			return host.Datum{}, err
		}
		f, _ := n.Float64()
		d, ok := host.Coerce(host.Double(f), tag)
		if !ok {
			return host.Datum{}, errors.Overflow(errors.PhaseCall, nil, f, tag.String())
		}
		return d, nil
	}
	return host.Datum{}, fmt.Errorf("cannot produce %s from %s", tag, v.Type().FriendlyName())
}

// truncate returns n without its fraction. ok is false when the result
// does not fit an int64.
func truncate(n *big.Float) (int64, bool) {
	if n.IsInf() {
		return 0, false
	}
	i, acc := n.Int64()
	switch {
	case i == math.MaxInt64 && acc == big.Below:
		return 0, false
	case i == math.MinInt64 && acc == big.Above:
		return 0, false
	}
	return i, true
}

func number(v cty.Value) (*big.Float, error) {
	n, err := convert.Convert(v, cty.Number)
	if err != nil {
		return nil, err
	}
	return n.AsBigFloat(), nil
}

func inferTag(v cty.Value) foreign.Tag {
	switch v.Type() {
	case cty.String:
		return foreign.TagString
	case cty.Bool:
		return foreign.TagBool
	case cty.Number:
		if v.AsBigFloat().IsInt() {
			return foreign.TagLong
		}
		return foreign.TagDouble
	}
	return foreign.TagString
}
