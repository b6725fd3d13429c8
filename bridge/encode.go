package bridge

import (
	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/value"
)

// maxChar is the largest code point a one-byte foreign char can carry.
const maxChar = 0xFF

// encode creates a runtime handle holding arg. On error no handle exists.
func encode(values foreign.Values, fn string, index int, arg value.Value) (foreign.Handle, error) {
	var (
		h   foreign.Handle
		tag foreign.Tag
	)

	switch v := arg.(type) {
	case value.Short:
		h, tag = values.CreateShort(int16(v)), foreign.TagShort
	case value.Int:
		h, tag = values.CreateInt(int32(v)), foreign.TagInt
	case value.Long:
		h, tag = values.CreateLong(int64(v)), foreign.TagLong
	case value.Float:
		h, tag = values.CreateFloat(float32(v)), foreign.TagFloat
	case value.Double:
		h, tag = values.CreateDouble(float64(v)), foreign.TagDouble
	case value.Bool:
		h, tag = values.CreateBool(bool(v)), foreign.TagBool
	case value.Char:
		if v < 0 || v > maxChar {
			return foreign.NilHandle, errors.Overflow(errors.PhaseEncode, errors.ArgPath(fn, index), rune(v), "char")
		}
		h, tag = values.CreateChar(int8(uint8(v))), foreign.TagChar
	case value.Str:
		h, tag = values.CreateString(string(v)), foreign.TagString
	case nil:
		return foreign.NilHandle, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(errors.ArgPath(fn, index)...).
			Detail("nil argument").
			Build()
	default:
		return foreign.NilHandle, errors.UnsupportedArgument(fn, index, arg.Kind().String())
	}

	if h == foreign.NilHandle {
		return foreign.NilHandle, errors.AllocationFailed(fn, index, tag.String())
	}
	return h, nil
}
