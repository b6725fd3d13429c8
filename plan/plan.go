package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/value"
)

var errUnknown = fmt.Errorf("value is not known until run time")

func errType(t cty.Type) error {
	return fmt.Errorf("%s values cannot be passed to a function", t.FriendlyName())
}

type fileRoot struct {
	Loads []*loadBlock `hcl:"load,block"`
	Calls []*callBlock `hcl:"call,block"`
}

type loadBlock struct {
	Tag   string   `hcl:"tag,label"`
	Paths []string `hcl:"paths"`
}

type callBlock struct {
	Args   hcl.Expression `hcl:"args,optional"`
	Expect *hcl.Attribute `hcl:"expect,optional"`
	Error  *string        `hcl:"error,optional"`
	Name   string         `hcl:"name,label"`
}

// Plan is a parsed run plan.
type Plan struct {
	// Dir resolves relative load paths. Empty means the working directory.
	Dir   string
	Loads []Load
	Calls []Call
}

// Load asks the runtime to load Paths with the loader for Tag.
type Load struct {
	Tag   string
	Paths []string
}

// Call invokes Name with Args and checks the outcome.
type Call struct {
	// Expect is the wanted result; nil accepts any successful result.
	Expect value.Value

	Name string

	// ErrorKind, when set, requires the call to fail with that kind.
	ErrorKind errors.Kind

	Args []value.Value

	// loose matches numbers by value across numeric kinds.
	loose bool
}

// ParseFile reads and parses the plan at path.
func ParseFile(path string) (*Plan, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	p, err := Parse(src, path)
	if err != nil {
		return nil, err
	}
	p.Dir = filepath.Dir(path)
	return p, nil
}

// Parse parses plan source. filename is used in diagnostics only.
func Parse(src []byte, filename string) (*Plan, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.ParseFailed(filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, errors.ParseFailed(filename, diags)
	}

	ectx := &hcl.EvalContext{Functions: Functions()}
	p := &Plan{}

	for _, lb := range root.Loads {
		if lb.Tag == "" || len(lb.Paths) == 0 {
			return nil, errors.ParseFailed(filename,
				fmt.Errorf("load %q needs a tag and at least one path", lb.Tag))
		}
		p.Loads = append(p.Loads, Load{Tag: lb.Tag, Paths: lb.Paths})
	}

	for _, cb := range root.Calls {
		c, err := buildCall(ectx, cb)
		if err != nil {
			return nil, errors.ParseFailed(fmt.Sprintf("%s: call %q", filename, cb.Name), err)
		}
		p.Calls = append(p.Calls, c)
	}
	return p, nil
}

func buildCall(ectx *hcl.EvalContext, cb *callBlock) (Call, error) {
	c := Call{Name: cb.Name}
	if cb.Name == "" {
		return c, fmt.Errorf("function name is empty")
	}
	if cb.Expect != nil && cb.Error != nil {
		return c, fmt.Errorf("expect and error are mutually exclusive")
	}
	if cb.Error != nil {
		c.ErrorKind = errors.Kind(*cb.Error)
	}

	if cb.Args != nil {
		args, diags := cb.Args.Value(ectx)
		if diags.HasErrors() {
			return c, diags
		}
		if !args.IsNull() {
			if !args.Type().IsTupleType() && !args.Type().IsListType() {
				return c, fmt.Errorf("args must be a list, got %s", args.Type().FriendlyName())
			}
			for it := args.ElementIterator(); it.Next(); {
				idx, el := it.Element()
				v, _, err := fromCty(el)
				if err != nil {
					return c, fmt.Errorf("args[%s]: %w", idx.AsBigFloat().String(), err)
				}
				c.Args = append(c.Args, v)
			}
		}
	}

	if cb.Expect != nil {
		want, diags := cb.Expect.Expr.Value(ectx)
		if diags.HasErrors() {
			return c, diags
		}
		v, exact, err := fromCty(want)
		if err != nil {
			return c, fmt.Errorf("expect: %w", err)
		}
		c.Expect = v
		c.loose = !exact
	}
	return c, nil
}
