package value

import (
	"math"
	"testing"
)

func TestFromChar_Unsigned(t *testing.T) {
	tests := []struct {
		in   int8
		want rune
	}{
		{'a', 'a'},
		{0, 0},
		{127, 127},
		{-1, 0xFF},
		{-23, 0xE9}, // é in Latin-1
		{-128, 0x80},
	}

	for _, tt := range tests {
		got := FromChar(tt.in)
		c, ok := got.(Char)
		if !ok {
			t.Fatalf("FromChar(%d) = %T, want Char", tt.in, got)
		}
		if rune(c) != tt.want {
			t.Errorf("FromChar(%d) = %U, want %U", tt.in, rune(c), tt.want)
		}
	}
}

func TestFromPrimitives(t *testing.T) {
	tests := []struct {
		name string
		got  Value
		want Value
	}{
		{"short", FromShort(math.MinInt16), Short(math.MinInt16)},
		{"int", FromInt(math.MaxInt32), Int(math.MaxInt32)},
		{"long", FromLong(math.MinInt64), Long(math.MinInt64)},
		{"float", FromFloat(1.5), Float(1.5)},
		{"double", FromDouble(math.Pi), Double(math.Pi)},
		{"bool", FromBool(true), Bool(true)},
		{"string", FromString("héllo"), Str("héllo")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !Equal(tt.got, tt.want) {
				t.Errorf("got %v (%s), want %v (%s)", tt.got, tt.got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

type celsius float64

func TestOf(t *testing.T) {
	tests := []struct {
		name string
		got  Value
		want Value
	}{
		{"int8 is char", Of(int8(-1)), Char(0xFF)},
		{"int16", Of(int16(7)), Short(7)},
		{"int32", Of(int32(7)), Int(7)},
		{"int64", Of(int64(7)), Long(7)},
		{"float32", Of(float32(0.25)), Float(0.25)},
		{"float64", Of(0.25), Double(0.25)},
		{"bool", Of(false), Bool(false)},
		{"string", Of("x"), Str("x")},
		{"named", Of(celsius(21.5)), Double(21.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !Equal(tt.got, tt.want) {
				t.Errorf("got %v (%s), want %v (%s)", tt.got, tt.got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestEqual(t *testing.T) {
	nan := math.Float64frombits(0x7ff8000000000001)
	fn := Function(func(v Value) Value { return v })

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same long", Long(1), Long(1), true},
		{"kind differs", Int(1), Long(1), false},
		{"nan bits", Double(nan), Double(nan), true},
		{"signed zero", Double(0), Double(math.Copysign(0, -1)), false},
		{"str with nul", Str("a\x00b"), Str("a\x00b"), true},
		{"array", Array{Int(1), Str("x")}, Array{Int(1), Str("x")}, true},
		{"array length", Array{Int(1)}, Array{Int(1), Int(2)}, false},
		{"buffer", Buffer{1, 2}, Buffer{1, 2}, true},
		{"pointer", Pointer{Elem: Bool(true)}, Pointer{Elem: Bool(true)}, true},
		{"function same", fn, fn, true},
		{"function nil", Function(nil), Function(nil), true},
		{"nil values", nil, nil, true},
		{"nil vs null", nil, Null{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestKind(t *testing.T) {
	for _, k := range []Kind{KindShort, KindInt, KindLong, KindFloat, KindDouble, KindBool, KindChar, KindStr} {
		if !k.IsPrimitive() {
			t.Errorf("%s should be primitive", k)
		}
		parsed, ok := ParseKind(k.String())
		if !ok || parsed != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), parsed, ok)
		}
	}
	for _, k := range []Kind{KindNull, KindArray, KindBuffer, KindPointer, KindFunction} {
		if k.IsPrimitive() {
			t.Errorf("%s should not be primitive", k)
		}
	}
	if Kind(200).String() != "unknown" {
		t.Error("out of range kind should be unknown")
	}
	if k, ok := ParseKind("string"); !ok || k != KindStr {
		t.Error("string should alias str")
	}
}

func TestParseTyped(t *testing.T) {
	tests := []struct {
		in      string
		want    Value
		wantErr bool
	}{
		{"int:5", Int(5), false},
		{"short:-3", Short(-3), false},
		{"long:0x10", Long(16), false},
		{"double:2.5", Double(2.5), false},
		{"float:0.5", Float(0.5), false},
		{"bool:true", Bool(true), false},
		{"char:é", Char('é'), false},
		{"str:a:b", Str("a:b"), false},
		{"hello", Str("hello"), false},
		{"http://x", Str("http://x"), false},
		{"null:", Null{}, false},
		{"short:70000", nil, true},
		{"char:ab", nil, true},
		{"bool:maybe", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTyped(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTyped(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTyped(%q): %v", tt.in, err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("ParseTyped(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := Parse(KindArray, "[]"); err == nil {
		t.Error("array has no textual form")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Null{}, "null"},
		{Long(-5), "-5"},
		{Double(3.1416), "3.1416"},
		{Str("Hello World"), `"Hello World"`},
		{Char('A'), "'A'"},
		{Array{Int(1), nil}, "[1, <nil>]"},
		{Pointer{Elem: Short(2)}, "&2"},
		{Buffer{1, 2, 3}, "buffer(3)"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Null{}, "null:"},
		{Short(-3), "short:-3"},
		{Int(5), "int:5"},
		{Long(1 << 40), "long:1099511627776"},
		{Float(0.5), "float:0.5"},
		{Double(3.1416), "double:3.1416"},
		{Bool(false), "bool:false"},
		{Char(0xE9), "char:é"},
		{Str("a:b"), "str:a:b"},
		{Str(""), "str:"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := Format(tt.v)
			if got != tt.want {
				t.Fatalf("Format(%v) = %q, want %q", tt.v, got, tt.want)
			}
			back, err := ParseTyped(got)
			if err != nil {
				t.Fatalf("ParseTyped(%q): %v", got, err)
			}
			if !Equal(back, tt.v) {
				t.Errorf("ParseTyped(%q) = %v, want %v", got, back, tt.v)
			}
		})
	}

	if got := Format(Buffer{1}); got != "buffer:buffer(1)" {
		t.Errorf("Format(buffer) = %q", got)
	}
}
