package wasm

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/polycall/bridge"
	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/host"
	"github.com/wippyai/polycall/value"
)

func mathModule() testModule {
	return testModule{funcs: []testFunc{
		{name: "add", params: []byte{i32, i32}, results: []byte{i32}, body: ops(localGet(0), localGet(1), []byte{0x6a})},
		{name: "half", params: []byte{f64}, results: []byte{f64}, body: ops(localGet(0), f64Const(2), []byte{0xa3})},
		{name: "mul64", params: []byte{i64, i64}, results: []byte{i64}, body: ops(localGet(0), localGet(1), []byte{0x7e})},
		{name: "nop"},
		{name: "pair", results: []byte{i32, i32}, body: ops(i32Const(1), i32Const(2))},
	}}
}

func stringModule() testModule {
	retArea := []byte{16, 0, 0, 0, 5, 0, 0, 0}
	return testModule{
		heap: 1024,
		data: []dataSegment{
			{offset: 16, bytes: []byte("hello")},
			{offset: 32, bytes: retArea},
		},
		funcs: []testFunc{
			{name: "hello", results: []byte{i32}, body: i32Const(32)},
			{name: "echo", params: []byte{i32, i32}, results: []byte{i32}, body: ops(
				i32Const(48), localGet(0), i32Store(),
				i32Const(52), localGet(1), i32Store(),
				i32Const(48),
			)},
			{name: "strlen", params: []byte{i32, i32}, results: []byte{i32}, body: localGet(1)},
			{name: "next_char", params: []byte{i32}, results: []byte{i32}, body: ops(localGet(0), i32Const(1), []byte{0x6a})},
			{name: "negate", params: []byte{i32}, results: []byte{i32}, body: ops(localGet(0), []byte{0x45})},
		},
	}
}

const stringWIT = `
package test:strings;

world strings {
  export hello: func() -> string;
  export echo: func(s: string) -> string;
  export strlen: func(s: string) -> u32;
  export next_char: func(c: char) -> char;
  export negate: func(b: bool) -> bool;
}
`

func writeModule(t *testing.T, dir, base string, m testModule, wit string) string {
	t.Helper()
	path := filepath.Join(dir, base+".wasm")
	if err := os.WriteFile(path, m.bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	if wit != "" {
		if err := os.WriteFile(filepath.Join(dir, base+".wit"), []byte(wit), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func newRuntime(t *testing.T, l *Loader) *host.Runtime {
	t.Helper()
	rt := host.New(host.WithLoader(l))
	if !rt.Initialize(context.Background()).OK() {
		t.Fatal(rt.LastError())
	}
	t.Cleanup(func() { rt.Destroy(context.Background()) })
	return rt
}

func TestLoader_CoreSignatures(t *testing.T) {
	ctx := context.Background()
	path := writeModule(t, t.TempDir(), "math", mathModule(), "")
	rt := newRuntime(t, New())

	if !rt.LoadFromFile(ctx, Tag, []string{path}).OK() {
		t.Fatal(rt.LastError())
	}

	tests := []struct {
		name string
		args []value.Value
		want value.Value
	}{
		{"add", []value.Value{value.Int(40), value.Int(2)}, value.Int(42)},
		{"add", []value.Value{value.Int(-1), value.Short(-1)}, value.Int(-2)},
		{"half", []value.Value{value.Double(5)}, value.Double(2.5)},
		{"half", []value.Value{value.Long(3)}, value.Double(1.5)},
		{"mul64", []value.Value{value.Long(1 << 40), value.Long(3)}, value.Long(3 << 40)},
		{"nop", nil, value.Null{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bridge.Call(ctx, rt, tt.name, tt.args...)
			if err != nil {
				t.Fatalf("Call: %v", err)
			}
			if !value.Equal(got, tt.want) {
				t.Errorf("%s = %v (%s), want %v", tt.name, got, got.Kind(), tt.want)
			}
		})
	}

	if rt.Function("pair") != foreign.NilCallable {
		t.Error("multi-value export should be skipped")
	}

	infos := rt.Functions()
	if len(infos) != 4 {
		t.Fatalf("loaded %d functions, want 4", len(infos))
	}
	for _, info := range infos {
		if info.Name == "add" && (info.Result != foreign.TagInt || len(info.Params) != 2) {
			t.Errorf("add info = %+v", info)
		}
		if info.Name == "nop" && !info.Void {
			t.Error("nop should be void")
		}
	}
}

func TestLoader_WITStrings(t *testing.T) {
	ctx := context.Background()
	path := writeModule(t, t.TempDir(), "strings", stringModule(), stringWIT)
	rt := newRuntime(t, New())

	if !rt.LoadFromFile(ctx, Tag, []string{path}).OK() {
		t.Fatal(rt.LastError())
	}

	tests := []struct {
		name string
		args []value.Value
		want value.Value
	}{
		{"hello", nil, value.Str("hello")},
		{"echo", []value.Value{value.Str("héllo")}, value.Str("héllo")},
		{"echo", []value.Value{value.Str("a\x00b")}, value.Str("a\x00b")},
		{"echo", []value.Value{value.Str("")}, value.Str("")},
		{"strlen", []value.Value{value.Str("héllo")}, value.Long(6)},
		{"next_char", []value.Value{value.Char('a')}, value.Char('b')},
		{"negate", []value.Value{value.Bool(true)}, value.Bool(false)},
		{"negate", []value.Value{value.Bool(false)}, value.Bool(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bridge.Call(ctx, rt, tt.name, tt.args...)
			if err != nil {
				t.Fatalf("Call: %v", err)
			}
			if !value.Equal(got, tt.want) {
				t.Errorf("%s = %v (%s), want %v", tt.name, got, got.Kind(), tt.want)
			}
		})
	}

	_, err := bridge.Call(ctx, rt, "next_char", value.Char(0xFF))
	if !stderrors.Is(err, errors.ErrCallFailed) || !strings.Contains(err.Error(), "one byte") {
		t.Fatalf("char overflow err = %v", err)
	}

	for _, info := range rt.Functions() {
		if info.Name == "echo" && (info.Params[0].Name != "s" || info.Params[0].Tag != foreign.TagString) {
			t.Errorf("echo params = %+v", info.Params)
		}
	}
	if st := rt.Stats(); st.Live != 0 {
		t.Errorf("%d values leaked", st.Live)
	}
}

func TestLoader_SidecarMismatch(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		wit  string
		want string
	}{
		{"wrong types", `add: func(a: f64, b: f64) -> s32;`, "does not match"},
		{"missing export", `sub: func(a: s32, b: s32) -> s32;`, "not found"},
		{"unsupported type", `add: func(a: list<u8>) -> s32;`, "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeModule(t, t.TempDir(), "math", mathModule(), tt.wit)
			rt := newRuntime(t, New())

			if rt.LoadFromFile(ctx, Tag, []string{path}).OK() {
				t.Fatal("load succeeded")
			}
			err := rt.LastError()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("LastError = %v, want mention of %q", err, tt.want)
			}
			if rt.Function("add") != foreign.NilCallable {
				t.Fatal("function visible after failed load")
			}
		})
	}
}

func TestLoader_BadInput(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	garbage := filepath.Join(dir, "junk.wasm")
	if err := os.WriteFile(garbage, []byte("not wasm"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := New()
	for _, paths := range [][]string{
		nil,
		{filepath.Join(dir, "missing.wasm")},
		{filepath.Join(dir, "module.so")},
		{garbage},
	} {
		if _, err := l.Load(ctx, paths); err == nil {
			t.Errorf("Load(%v) succeeded", paths)
		}
	}
	if err := l.Close(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestLoader_RestartAfterClose(t *testing.T) {
	ctx := context.Background()
	path := writeModule(t, t.TempDir(), "math", mathModule(), "")
	l := New(WithMemoryLimitPages(16))

	for round := 0; round < 2; round++ {
		if err := l.Start(ctx); err != nil {
			t.Fatal(err)
		}
		fns, err := l.Load(ctx, []string{path})
		if err != nil {
			t.Fatal(err)
		}
		if len(fns) != 4 {
			t.Fatalf("round %d: %d functions", round, len(fns))
		}
		if err := l.Close(ctx); err != nil {
			t.Fatal(err)
		}
	}
}

func TestParseWIT(t *testing.T) {
	sigs, err := parseWIT(stringWIT)
	if err != nil {
		t.Fatal(err)
	}
	if len(sigs) != 5 {
		t.Fatalf("parsed %d functions", len(sigs))
	}
	echo := sigs["echo"]
	if len(echo.params) != 1 || echo.params[0] != kindString || echo.results[0] != kindString || echo.names[0] != "s" {
		t.Errorf("echo = %+v", echo)
	}
	if sigs["strlen"].results[0].tag() != foreign.TagLong {
		t.Error("u32 should surface as long")
	}

	if _, err := parseWIT("interface empty {}"); err == nil {
		t.Error("empty WIT accepted")
	}
}
