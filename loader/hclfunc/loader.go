package hclfunc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"go.uber.org/zap"

	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/host"
)

// Tag is the language tag of the HCL loader.
const Tag = "hcl"

// fileRoot is the top-level schema of a source file.
type fileRoot struct {
	Functions []*functionBlock `hcl:"function,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type functionBlock struct {
	Result  hcl.Expression `hcl:"result,optional"`
	Returns *string        `hcl:"returns,optional"`
	Name    string         `hcl:"name,label"`
	Params  []*paramBlock  `hcl:"param,block"`
}

type paramBlock struct {
	Name string  `hcl:"name,label"`
	Type *string `hcl:"type,optional"`
}

// Loader parses HCL function files.
type Loader struct {
	logger *zap.Logger
	funcs  map[string]function.Function
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithFunction makes fn callable from result expressions as name.
func WithFunction(name string, fn function.Function) Option {
	return func(ld *Loader) {
		ld.funcs[name] = fn
	}
}

// New creates a loader with the standard function set.
func New(opts ...Option) *Loader {
	l := &Loader{
		logger: zap.NewNop(),
		funcs:  Functions(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Functions returns the functions available to result expressions.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"abs":       stdlib.AbsoluteFunc,
		"ceil":      stdlib.CeilFunc,
		"coalesce":  stdlib.CoalesceFunc,
		"concat":    stdlib.ConcatFunc,
		"floor":     stdlib.FloorFunc,
		"format":    stdlib.FormatFunc,
		"join":      stdlib.JoinFunc,
		"length":    stdlib.LengthFunc,
		"lower":     stdlib.LowerFunc,
		"max":       stdlib.MaxFunc,
		"min":       stdlib.MinFunc,
		"pow":       stdlib.PowFunc,
		"replace":   stdlib.ReplaceFunc,
		"reverse":   stdlib.ReverseFunc,
		"split":     stdlib.SplitFunc,
		"strlen":    stdlib.StrlenFunc,
		"substr":    stdlib.SubstrFunc,
		"title":     stdlib.TitleFunc,
		"trimspace": stdlib.TrimSpaceFunc,
		"upper":     stdlib.UpperFunc,
	}
}

func (l *Loader) Tag() string { return Tag }

// Load parses every .hcl file in paths. Directories are walked.
func (l *Loader) Load(_ context.Context, paths []string) ([]host.Function, error) {
	files, err := findFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "no .hcl files found")
	}

	parser := hclparse.NewParser()
	var out []host.Function

	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, errors.ParseFailed(file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
			return nil, errors.ParseFailed(file, diags)
		}

		for _, block := range root.Functions {
			fn, err := l.build(block)
			if err != nil {
				return nil, errors.ParseFailed(fmt.Sprintf("%s: function %q", file, block.Name), err)
			}
			out = append(out, fn)
		}
		l.logger.Debug("parsed function file", zap.String("file", file), zap.Int("functions", len(root.Functions)))
	}
	return out, nil
}

func (l *Loader) Close(context.Context) error { return nil }

func (l *Loader) build(b *functionBlock) (*exprFunction, error) {
	fn := &exprFunction{
		expr:  b.Result,
		funcs: l.funcs,
		info: foreign.FunctionInfo{
			Name:     b.Name,
			Language: Tag,
			Result:   foreign.TagNull,
		},
	}

	seen := make(map[string]bool, len(b.Params))
	for _, p := range b.Params {
		if !hclsyntax.ValidIdentifier(p.Name) {
			return nil, fmt.Errorf("parameter %q is not an identifier", p.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("parameter %q declared twice", p.Name)
		}
		seen[p.Name] = true

		param := foreign.Param{Name: p.Name, Tag: foreign.TagNull}
		if p.Type != nil && *p.Type != "any" {
			tag, ok := primitiveTag(*p.Type)
			if !ok {
				return nil, fmt.Errorf("parameter %q has unknown type %q", p.Name, *p.Type)
			}
			param.Tag, param.Typed = tag, true
		}
		fn.info.Params = append(fn.info.Params, param)
	}

	if b.Returns != nil {
		switch *b.Returns {
		case "void":
			fn.info.Void = true
		case "any":
		default:
			tag, ok := primitiveTag(*b.Returns)
			if !ok {
				return nil, fmt.Errorf("unknown result type %q", *b.Returns)
			}
			fn.info.Result = tag
		}
	}

	if !fn.info.Void && isNullExpr(b.Result) {
		return nil, fmt.Errorf("missing result")
	}

	for _, traversal := range b.Result.Variables() {
		if name := traversal.RootName(); !seen[name] {
			return nil, fmt.Errorf("result refers to unknown parameter %q", name)
		}
	}
	return fn, nil
}

func primitiveTag(name string) (foreign.Tag, bool) {
	tag, ok := foreign.ParseTag(name)
	if !ok || !tag.Primitive() {
		return 0, false
	}
	return tag, true
}

// isNullExpr reports whether expr is the placeholder for an absent
// optional attribute.
func isNullExpr(expr hcl.Expression) bool {
	if expr == nil {
		return true
	}
	if len(expr.Variables()) > 0 {
		return false
	}
	v, diags := expr.Value(nil)
	return !diags.HasErrors() && v.IsNull()
}

// findFiles expands paths into a sorted list of .hcl files.
func findFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(p string) {
		if _, ok := seen[p]; !ok && filepath.Ext(p) == ".hcl" {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) != ".hcl" {
				return nil, fmt.Errorf("%s is not an .hcl file", path)
			}
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// exprFunction evaluates an HCL expression with the arguments bound to
// parameter names.
type exprFunction struct {
	expr  hcl.Expression
	funcs map[string]function.Function
	info  foreign.FunctionInfo
}

func (f *exprFunction) Info() foreign.FunctionInfo { return f.info }

func (f *exprFunction) Invoke(_ context.Context, args []host.Datum) (host.Datum, error) {
	vars := make(map[string]cty.Value, len(args))
	for i, p := range f.info.Params {
		vars[p.Name] = toCty(args[i])
	}

	v, diags := f.expr.Value(&hcl.EvalContext{
		Variables: vars,
		Functions: f.funcs,
	})
	if diags.HasErrors() {
		return host.Datum{}, diags
	}
	if f.info.Void {
		return host.Null(), nil
	}
	return fromCty(v, f.info.Result)
}
