package mock

import (
	"context"
	"testing"

	"github.com/wippyai/polycall/bridge"
	"github.com/wippyai/polycall/host"
	"github.com/wippyai/polycall/value"
)

func TestMockFunctions(t *testing.T) {
	ctx := context.Background()
	l := New()
	rt := host.New(host.WithLoader(l))
	if !rt.Initialize(ctx).OK() {
		t.Fatal(rt.LastError())
	}
	if !rt.LoadFromFile(ctx, Tag, []string{"empty.mock"}).OK() {
		t.Fatal(rt.LastError())
	}

	tests := []struct {
		name string
		args []value.Value
		want value.Value
	}{
		{"my_empty_func", nil, value.Null{}},
		{"my_empty_func_int", nil, value.Int(1234)},
		{"my_empty_func_str", nil, value.Str("Hello World")},
		{"two_doubles", []value.Value{value.Double(3), value.Double(4)}, value.Double(3.1416)},
		{"two_doubles", []value.Value{value.Int(3), value.Long(4)}, value.Double(3.1416)},
		{"mixed_args", []value.Value{value.Char('a'), value.Int(3), value.Long(4), value.Double(3.4)}, value.Char('A')},
		{"new_args", []value.Value{value.Str("a")}, value.Str("Hello World")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bridge.Call(ctx, rt, tt.name, tt.args...)
			if err != nil {
				t.Fatalf("Call: %v", err)
			}
			if !value.Equal(got, tt.want) {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if l.Calls("two_doubles") != 2 {
		t.Errorf("two_doubles called %d times", l.Calls("two_doubles"))
	}
	if st := rt.Stats(); st.Live != 0 {
		t.Errorf("%d values leaked", st.Live)
	}

	if _, err := bridge.Call(ctx, rt, "new_args"); err == nil {
		t.Error("missing argument accepted")
	}

	if !rt.Destroy(ctx).OK() {
		t.Fatal(rt.LastError())
	}
	if l.Calls("new_args") != 0 {
		t.Error("Close did not reset call counts")
	}
}
