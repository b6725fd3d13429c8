package foreign

import "testing"

func TestTag_Enumeration(t *testing.T) {
	want := map[Tag]int{
		TagBool: 0, TagChar: 1, TagShort: 2, TagInt: 3, TagLong: 4,
		TagFloat: 5, TagDouble: 6, TagString: 7, TagBuffer: 8, TagArray: 9,
		TagMap: 10, TagPtr: 11, TagFuture: 12, TagFunction: 13, TagNull: 14,
	}
	if len(want) != TagCount {
		t.Fatalf("enumeration has %d tags, TagCount = %d", len(want), TagCount)
	}
	for tag, n := range want {
		if int(tag) != n {
			t.Errorf("%s = %d, want %d", tag, int(tag), n)
		}
		if !tag.Known() {
			t.Errorf("%s should be known", tag)
		}
		parsed, ok := ParseTag(tag.String())
		if !ok || parsed != tag {
			t.Errorf("ParseTag(%q) = %v, %v", tag.String(), parsed, ok)
		}
	}
}

func TestTag_Unknown(t *testing.T) {
	for _, tag := range []Tag{-1, 15, 42} {
		if tag.Known() {
			t.Errorf("%d should not be known", int(tag))
		}
		if tag.Primitive() {
			t.Errorf("%d should not be primitive", int(tag))
		}
	}
	if got := Tag(42).String(); got != "tag(42)" {
		t.Errorf("String() = %q, want tag(42)", got)
	}
	if _, ok := ParseTag("object"); ok {
		t.Error("object is not in the enumeration")
	}
}

func TestTag_Primitive(t *testing.T) {
	for tag := TagBool; tag <= TagString; tag++ {
		if !tag.Primitive() {
			t.Errorf("%s should be primitive", tag)
		}
	}
	for tag := TagBuffer; tag <= TagNull; tag++ {
		if tag.Primitive() {
			t.Errorf("%s should not be primitive", tag)
		}
	}
}

func TestStatus(t *testing.T) {
	if !StatusOK.OK() {
		t.Error("StatusOK should be OK")
	}
	if Status(-1).OK() || StatusFailed.OK() {
		t.Error("non-zero status should fail")
	}
}
