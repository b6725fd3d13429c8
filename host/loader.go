package host

import (
	"context"
	"strconv"

	"github.com/wippyai/polycall/foreign"
)

// Function is a callable produced by a Loader.
type Function interface {
	Info() foreign.FunctionInfo

	// Invoke runs the function. Arguments are already checked against
	// Info().Params and coerced to typed parameters. The result of a void
	// function is ignored.
	Invoke(ctx context.Context, args []Datum) (Datum, error)
}

// Loader turns source files of one language into functions.
type Loader interface {
	// Tag is the language tag passed to LoadFromFile.
	Tag() string

	// Load reads paths and returns the functions they define.
	Load(ctx context.Context, paths []string) ([]Function, error)

	// Close releases everything the loader holds.
	Close(ctx context.Context) error
}

// Starter is implemented by loaders that need setup when the runtime
// initializes.
type Starter interface {
	Start(ctx context.Context) error
}

// Func is a Function backed by a Go closure.
type Func struct {
	Fn   func(ctx context.Context, args []Datum) (Datum, error)
	Meta foreign.FunctionInfo
}

func (f *Func) Info() foreign.FunctionInfo { return f.Meta }

func (f *Func) Invoke(ctx context.Context, args []Datum) (Datum, error) {
	return f.Fn(ctx, args)
}

// Params builds typed parameters named p0, p1...
func Params(tags ...foreign.Tag) []foreign.Param {
	params := make([]foreign.Param, len(tags))
	for i, t := range tags {
		params[i] = foreign.Param{Name: "p" + strconv.Itoa(i), Tag: t, Typed: true}
	}
	return params
}
