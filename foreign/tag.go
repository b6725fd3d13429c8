package foreign

import "strconv"

// Tag is the runtime's type discriminator for a value handle.
type Tag int32

// The closed tag enumeration shared with the runtime.
const (
	TagBool     Tag = 0
	TagChar     Tag = 1
	TagShort    Tag = 2
	TagInt      Tag = 3
	TagLong     Tag = 4
	TagFloat    Tag = 5
	TagDouble   Tag = 6
	TagString   Tag = 7
	TagBuffer   Tag = 8
	TagArray    Tag = 9
	TagMap      Tag = 10
	TagPtr      Tag = 11
	TagFuture   Tag = 12
	TagFunction Tag = 13
	TagNull     Tag = 14
)

// TagCount is the number of recognized tags.
const TagCount = 15

var tagNames = [TagCount]string{
	TagBool:     "bool",
	TagChar:     "char",
	TagShort:    "short",
	TagInt:      "int",
	TagLong:     "long",
	TagFloat:    "float",
	TagDouble:   "double",
	TagString:   "string",
	TagBuffer:   "buffer",
	TagArray:    "array",
	TagMap:      "map",
	TagPtr:      "ptr",
	TagFuture:   "future",
	TagFunction: "function",
	TagNull:     "null",
}

// Known reports whether t is part of the enumeration.
func (t Tag) Known() bool {
	return t >= 0 && t < TagCount
}

// Primitive reports whether t has a constructor and reader in Values.
func (t Tag) Primitive() bool {
	return t >= TagBool && t <= TagString
}

func (t Tag) String() string {
	if t.Known() {
		return tagNames[t]
	}
	return "tag(" + strconv.Itoa(int(t)) + ")"
}

// ParseTag returns the tag named s.
func ParseTag(s string) (Tag, bool) {
	for i, name := range tagNames {
		if name == s {
			return Tag(i), true
		}
	}
	return 0, false
}
