package value

// Kind identifies a Value variant.
type Kind uint8

const (
	KindNull Kind = iota
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBool
	KindChar
	KindStr
	KindArray
	KindBuffer
	KindPointer
	KindFunction
)

var kindNames = [...]string{
	KindNull:     "null",
	KindShort:    "short",
	KindInt:      "int",
	KindLong:     "long",
	KindFloat:    "float",
	KindDouble:   "double",
	KindBool:     "bool",
	KindChar:     "char",
	KindStr:      "str",
	KindArray:    "array",
	KindBuffer:   "buffer",
	KindPointer:  "pointer",
	KindFunction: "function",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPrimitive reports whether values of kind k have a foreign encoding.
func (k Kind) IsPrimitive() bool {
	return k >= KindShort && k <= KindStr
}

// ParseKind returns the kind named s. "string" is accepted for str.
func ParseKind(s string) (Kind, bool) {
	if s == "string" {
		return KindStr, true
	}
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}
