package plan

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/polycall"
	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/host"
	"github.com/wippyai/polycall/loader/mock"
	"github.com/wippyai/polycall/value"
)

const mockPlan = `
load "mock" {
  paths = ["test.mock"]
}

call "new_args" {
  args   = [str("a")]
  expect = "Hello World"
}

call "my_empty_func_int" {
  expect = 1234
}

call "two_doubles" {
  args   = [double(1), 2.5]
  expect = double(3.1416)
}

call "mixed_args" {
  args   = [char("x"), int(1), long(2), double(3)]
  expect = char("A")
}

call "my_empty_func" {
  expect = null
}

call "missing" {
  error = "not_found"
}
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(mockPlan), "mock.hcl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(p.Loads) != 1 || p.Loads[0].Tag != "mock" || p.Loads[0].Paths[0] != "test.mock" {
		t.Errorf("loads = %+v", p.Loads)
	}
	if len(p.Calls) != 6 {
		t.Fatalf("got %d calls, want 6", len(p.Calls))
	}

	tests := []struct {
		expect value.Value
		name   string
		args   []value.Value
		loose  bool
	}{
		{name: "new_args", args: []value.Value{value.Str("a")}, expect: value.Str("Hello World")},
		{name: "my_empty_func_int", expect: value.Long(1234), loose: true},
		{name: "two_doubles", args: []value.Value{value.Double(1), value.Double(2.5)}, expect: value.Double(3.1416)},
		{name: "mixed_args", args: []value.Value{value.Char('x'), value.Int(1), value.Long(2), value.Double(3)}, expect: value.Char('A')},
		{name: "my_empty_func", expect: value.Null{}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := p.Calls[i]
			if c.Name != tt.name {
				t.Fatalf("name = %q", c.Name)
			}
			if len(c.Args) != len(tt.args) {
				t.Fatalf("args = %v, want %v", c.Args, tt.args)
			}
			for j := range tt.args {
				if !value.Equal(c.Args[j], tt.args[j]) {
					t.Errorf("arg %d = %s %v, want %s %v", j, c.Args[j].Kind(), c.Args[j], tt.args[j].Kind(), tt.args[j])
				}
			}
			if !value.Equal(c.Expect, tt.expect) {
				t.Errorf("expect = %v, want %v", c.Expect, tt.expect)
			}
			if c.loose != tt.loose {
				t.Errorf("loose = %v, want %v", c.loose, tt.loose)
			}
		})
	}

	if p.Calls[5].ErrorKind != errors.KindNotFound || p.Calls[5].Expect != nil {
		t.Errorf("missing call = %+v", p.Calls[5])
	}
}

func TestParse_TypedHelpers(t *testing.T) {
	tests := []struct {
		want value.Value
		expr string
	}{
		{expr: `short(-3)`, want: value.Short(-3)},
		{expr: `int(70000)`, want: value.Int(70000)},
		{expr: `long(9007199254740993)`, want: value.Long(9007199254740993)},
		{expr: `float(0.5)`, want: value.Float(0.5)},
		{expr: `double(0.1)`, want: value.Double(0.1)},
		{expr: `bool(true)`, want: value.Bool(true)},
		{expr: `true`, want: value.Bool(true)},
		{expr: `str("")`, want: value.Str("")},
		{expr: `char("é")`, want: value.Char(0xE9)},
		{expr: `-7`, want: value.Long(-7)},
		{expr: `1.25`, want: value.Double(1.25)},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			src := "call \"f\" {\n  args = [" + tt.expr + "]\n}\n"
			p, err := Parse([]byte(src), "typed.hcl")
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			got := p.Calls[0].Args[0]
			if !value.Equal(got, tt.want) {
				t.Errorf("got %s %v, want %s %v", got.Kind(), got, tt.want.Kind(), tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "syntax", src: `call "f" {`},
		{name: "unknown block", src: "run \"f\" {\n}\n"},
		{name: "load without paths", src: "load \"mock\" {\n  paths = []\n}\n"},
		{name: "expect and error", src: "call \"f\" {\n  expect = 1\n  error  = \"not_found\"\n}\n"},
		{name: "args not a list", src: "call \"f\" {\n  args = \"a\"\n}\n"},
		{name: "short overflow", src: "call \"f\" {\n  args = [short(70000)]\n}\n"},
		{name: "int fraction", src: "call \"f\" {\n  args = [int(1.5)]\n}\n"},
		{name: "char too long", src: "call \"f\" {\n  args = [char(\"ab\")]\n}\n"},
		{name: "char empty", src: "call \"f\" {\n  args = [char(\"\")]\n}\n"},
		{name: "unknown function", src: "call \"f\" {\n  args = [quad(1)]\n}\n"},
		{name: "object arg", src: "call \"f\" {\n  args = [{a = 1}]\n}\n"},
		{name: "variable", src: "call \"f\" {\n  args = [x]\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			var perr *errors.Error
			if !stderrors.As(err, &perr) || perr.Phase != errors.PhaseParse {
				t.Errorf("got %v, want parse error", err)
			}
		})
	}
}

func newRuntime(t *testing.T) *polycall.Runtime {
	t.Helper()
	ctx := context.Background()
	rt := polycall.New(host.New(host.WithLoader(mock.New())))
	if err := rt.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rt.Destroy(ctx) })
	return rt
}

func TestRun(t *testing.T) {
	p, err := Parse([]byte(mockPlan), "mock.hcl")
	if err != nil {
		t.Fatal(err)
	}
	results, err := Run(context.Background(), newRuntime(t), p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(p.Calls) {
		t.Fatalf("got %d results", len(results))
	}
	for _, r := range results {
		if !r.Passed() {
			t.Errorf("%s: %s", r.Call.Name, r.Failure)
		}
	}
}

func TestRun_Failures(t *testing.T) {
	src := `
load "mock" {
  paths = ["test.mock"]
}

call "my_empty_func_int" {
  expect = long(1234)
}

call "new_args" {
  args   = [str("a")]
  expect = "Goodbye"
}

call "new_args" {
  args  = [str("a")]
  error = "not_found"
}

call "missing" {
}

call "my_empty_func_str" {
}
`
	p, err := Parse([]byte(src), "fail.hcl")
	if err != nil {
		t.Fatal(err)
	}
	results, err := Run(context.Background(), newRuntime(t), p)
	if err == nil {
		t.Fatal("Run should report failed calls")
	}

	passed := []bool{false, false, false, false, true}
	for i, r := range results {
		if r.Passed() != passed[i] {
			t.Errorf("call %d (%s): passed = %v, failure %q", i, r.Call.Name, r.Passed(), r.Failure)
		}
	}
	if !strings.Contains(err.Error(), "Goodbye") {
		t.Errorf("combined error %q does not name the mismatch", err)
	}
}

func TestRun_LoadFailure(t *testing.T) {
	src := "load \"cobol\" {\n  paths = [\"main.cob\"]\n}\n\ncall \"main\" {\n}\n"
	p, err := Parse([]byte(src), "cobol.hcl")
	if err != nil {
		t.Fatal(err)
	}
	results, err := Run(context.Background(), newRuntime(t), p)
	if !stderrors.Is(err, errors.ErrLoadFailed) {
		t.Errorf("got %v, want load failed", err)
	}
	if results != nil {
		t.Errorf("no call should run after a failed load, got %v", results)
	}
}

type recorder struct {
	loads [][]string
}

func (r *recorder) LoadFromFile(_ context.Context, _ string, paths ...string) error {
	r.loads = append(r.loads, paths)
	return nil
}

func (r *recorder) Call(context.Context, string, ...value.Value) (value.Value, error) {
	return value.Null{}, nil
}

func TestParseFile_RelativePaths(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "abs.hcl")
	src := "load \"hcl\" {\n  paths = [\"funcs\", \"" + filepath.ToSlash(abs) + "\"]\n}\n"
	path := filepath.Join(dir, "plan.hcl")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Dir != dir {
		t.Errorf("Dir = %q, want %q", p.Dir, dir)
	}

	rec := &recorder{}
	if _, err := Run(context.Background(), rec, p); err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "funcs"), filepath.ToSlash(abs)}
	if len(rec.loads) != 1 || len(rec.loads[0]) != 2 {
		t.Fatalf("loads = %v", rec.loads)
	}
	for i := range want {
		if rec.loads[0][i] != want[i] {
			t.Errorf("path %d = %q, want %q", i, rec.loads[0][i], want[i])
		}
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "none.hcl")); err == nil {
		t.Error("missing file should fail")
	}
}
