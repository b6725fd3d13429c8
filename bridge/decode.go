package bridge

import (
	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/value"
)

// decode copies the payload of h into a Value. ok is false when the tag is
// outside the enumeration. decode never releases h.
func decode(values foreign.Values, h foreign.Handle) (v value.Value, tag foreign.Tag, ok bool) {
	tag = values.ValueID(h)

	switch tag {
	case foreign.TagBool:
		return value.Bool(values.ToBool(h)), tag, true
	case foreign.TagChar:
		return value.FromChar(values.ToChar(h)), tag, true
	case foreign.TagShort:
		return value.Short(values.ToShort(h)), tag, true
	case foreign.TagInt:
		return value.Int(values.ToInt(h)), tag, true
	case foreign.TagLong:
		return value.Long(values.ToLong(h)), tag, true
	case foreign.TagFloat:
		return value.Float(values.ToFloat(h)), tag, true
	case foreign.TagDouble:
		return value.Double(values.ToDouble(h)), tag, true
	case foreign.TagString:
		return value.Str(values.ToString(h)), tag, true
	case foreign.TagBuffer, foreign.TagArray, foreign.TagMap,
		foreign.TagPtr, foreign.TagFuture, foreign.TagFunction:
		// no conversion yet
		return value.Null{}, tag, true
	case foreign.TagNull:
		return value.Null{}, tag, true
	}
	return value.Null{}, tag, false
}
