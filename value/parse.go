package value

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parse reads text as a value of kind k. Only primitive kinds and null
// have a textual form.
func Parse(k Kind, text string) (Value, error) {
	switch k {
	case KindNull:
		return Null{}, nil
	case KindShort:
		n, err := strconv.ParseInt(text, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("parse short %q: %w", text, err)
		}
		return Short(n), nil
	case KindInt:
		n, err := strconv.ParseInt(text, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("parse int %q: %w", text, err)
		}
		return Int(n), nil
	case KindLong:
		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("parse long %q: %w", text, err)
		}
		return Long(n), nil
	case KindFloat:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, fmt.Errorf("parse float %q: %w", text, err)
		}
		return Float(f), nil
	case KindDouble:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("parse double %q: %w", text, err)
		}
		return Double(f), nil
	case KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("parse bool %q: %w", text, err)
		}
		return Bool(b), nil
	case KindChar:
		r, size := utf8.DecodeRuneInString(text)
		if size == 0 || size != len(text) {
			return nil, fmt.Errorf("parse char %q: want exactly one character", text)
		}
		return Char(r), nil
	case KindStr:
		return Str(text), nil
	}
	return nil, fmt.Errorf("kind %s has no textual form", k)
}

// ParseTyped reads "kind:text" literals such as "int:5" or "str:hello".
// Text without a known kind prefix is a Str.
func ParseTyped(s string) (Value, error) {
	name, text, ok := strings.Cut(s, ":")
	if !ok {
		return Str(s), nil
	}
	k, known := ParseKind(name)
	if !known {
		return Str(s), nil
	}
	return Parse(k, text)
}

// Format renders v as a "kind:text" literal. Primitives and Null read back
// unchanged through ParseTyped.
func Format(v Value) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case Null:
		return "null:"
	case Char:
		return "char:" + string(rune(x))
	case Str:
		return "str:" + string(x)
	}
	return v.Kind().String() + ":" + v.String()
}
