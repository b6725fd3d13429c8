package host

import (
	"math"
	"strconv"

	"github.com/wippyai/polycall/foreign"
)

// Datum is a runtime-side value. Integral tags (bool, char, short, int,
// long) keep their payload in I, float and double in F, string in S.
type Datum struct {
	S   string
	I   int64
	F   float64
	Tag foreign.Tag
}

func Short(v int16) Datum    { return Datum{Tag: foreign.TagShort, I: int64(v)} }
func Int(v int32) Datum      { return Datum{Tag: foreign.TagInt, I: int64(v)} }
func Long(v int64) Datum     { return Datum{Tag: foreign.TagLong, I: v} }
func Float(v float32) Datum  { return Datum{Tag: foreign.TagFloat, F: float64(v)} }
func Double(v float64) Datum { return Datum{Tag: foreign.TagDouble, F: v} }
func Char(v int8) Datum      { return Datum{Tag: foreign.TagChar, I: int64(v)} }
func String(v string) Datum  { return Datum{Tag: foreign.TagString, S: v} }
func Null() Datum            { return Datum{Tag: foreign.TagNull} }

func Bool(v bool) Datum {
	d := Datum{Tag: foreign.TagBool}
	if v {
		d.I = 1
	}
	return d
}

// IsNumeric reports whether d holds a bool, char or number.
func (d Datum) IsNumeric() bool {
	return d.Tag.Primitive() && d.Tag != foreign.TagString
}

func (d Datum) isFloat() bool {
	return d.Tag == foreign.TagFloat || d.Tag == foreign.TagDouble
}

// Int64 returns d as an integer. Floats truncate toward zero and
// non-numeric values yield 0.
func (d Datum) Int64() int64 {
	switch {
	case d.isFloat():
		if math.IsNaN(d.F) {
			return 0
		}
		return int64(d.F)
	case d.IsNumeric():
		return d.I
	}
	return 0
}

// Float64 returns d as a float. Non-numeric values yield 0.
func (d Datum) Float64() float64 {
	switch {
	case d.isFloat():
		return d.F
	case d.IsNumeric():
		return float64(d.I)
	}
	return 0
}

// Truth returns d as a bool: non-zero numbers and non-empty strings are true.
func (d Datum) Truth() bool {
	switch {
	case d.Tag == foreign.TagString:
		return d.S != ""
	case d.isFloat():
		return d.F != 0
	case d.IsNumeric():
		return d.I != 0
	}
	return false
}

// Text returns the string payload, or a decimal rendering of numbers.
func (d Datum) Text() string {
	switch {
	case d.Tag == foreign.TagString:
		return d.S
	case d.Tag == foreign.TagBool:
		return strconv.FormatBool(d.I != 0)
	case d.Tag == foreign.TagChar:
		return string(rune(uint8(d.I)))
	case d.isFloat():
		return strconv.FormatFloat(d.F, 'g', -1, 64)
	case d.IsNumeric():
		return strconv.FormatInt(d.I, 10)
	}
	return ""
}

func (d Datum) String() string {
	if d.Tag == foreign.TagString {
		return d.Tag.String() + "(" + strconv.Quote(d.S) + ")"
	}
	return d.Tag.String() + "(" + d.Text() + ")"
}

// Coerce converts d to tag. Numbers, chars and bools convert among
// themselves; strings only match strings. Floats truncate toward zero when
// narrowed to an integer tag. The conversion fails when the value does not
// fit the target: integers outside its range, NaN or infinite floats for
// integer tags, finite doubles beyond the float range. A char target takes
// -128..255, the upper half being the unsigned form of the same byte.
func Coerce(d Datum, tag foreign.Tag) (Datum, bool) {
	if d.Tag == tag {
		return d, true
	}
	if !d.IsNumeric() {
		return Datum{}, false
	}

	switch tag {
	case foreign.TagBool:
		return Bool(d.Truth()), true
	case foreign.TagChar:
		i, ok := d.integral()
		if !ok || i < math.MinInt8 || i > math.MaxUint8 {
			return Datum{}, false
		}
		return Char(int8(uint8(i))), true
	case foreign.TagShort:
		i, ok := d.integral()
		if !ok || i < math.MinInt16 || i > math.MaxInt16 {
			return Datum{}, false
		}
		return Short(int16(i)), true
	case foreign.TagInt:
		i, ok := d.integral()
		if !ok || i < math.MinInt32 || i > math.MaxInt32 {
			return Datum{}, false
		}
		return Int(int32(i)), true
	case foreign.TagLong:
		i, ok := d.integral()
		if !ok {
			return Datum{}, false
		}
		return Long(i), true
	case foreign.TagFloat:
		f := d.Float64()
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return Datum{}, false
		}
		return Float(float32(f)), true
	case foreign.TagDouble:
		return Double(d.Float64()), true
	}
	return Datum{}, false
}

// integral returns d as an int64, truncating floats. ok is false for NaN,
// infinities and floats outside the int64 range.
func (d Datum) integral() (int64, bool) {
	if !d.isFloat() {
		return d.I, true
	}
	f := math.Trunc(d.F)
	if math.IsNaN(f) || f < math.MinInt64 || f >= -math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
