// Package mock provides a loader with a fixed set of functions and no file
// access. It backs tests and smoke checks of the call path.
package mock

import (
	"context"
	"sync"

	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/host"
)

// Tag is the language tag of the mock loader.
const Tag = "mock"

// Results returned by the mock functions.
const (
	IntResult    int32   = 1234
	DoubleResult float64 = 3.1416
	CharResult   int8    = 'A'
	StringResult         = "Hello World"
)

// Loader serves the mock functions for any load request.
type Loader struct {
	calls map[string]int
	mu    sync.Mutex
}

// New creates a mock loader.
func New() *Loader {
	return &Loader{calls: make(map[string]int)}
}

func (l *Loader) Tag() string { return Tag }

// Load ignores paths and returns the mock functions.
func (l *Loader) Load(context.Context, []string) ([]host.Function, error) {
	return []host.Function{
		l.define("my_empty_func", nil, foreign.TagNull, true, host.Null()),
		l.define("my_empty_func_int", nil, foreign.TagInt, false, host.Int(IntResult)),
		l.define("my_empty_func_str", nil, foreign.TagString, false, host.String(StringResult)),
		l.define("two_doubles", host.Params(foreign.TagDouble, foreign.TagDouble), foreign.TagDouble, false, host.Double(DoubleResult)),
		l.define("mixed_args", host.Params(foreign.TagChar, foreign.TagInt, foreign.TagLong, foreign.TagDouble), foreign.TagChar, false, host.Char(CharResult)),
		l.define("new_args", host.Params(foreign.TagString), foreign.TagString, false, host.String(StringResult)),
	}, nil
}

func (l *Loader) Close(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.calls)
	return nil
}

// Calls reports how often name was invoked since the last Close.
func (l *Loader) Calls(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[name]
}

func (l *Loader) define(name string, params []foreign.Param, result foreign.Tag, void bool, ret host.Datum) host.Function {
	return &host.Func{
		Meta: foreign.FunctionInfo{
			Name:     name,
			Language: Tag,
			Params:   params,
			Result:   result,
			Void:     void,
		},
		Fn: func(context.Context, []host.Datum) (host.Datum, error) {
			l.mu.Lock()
			l.calls[name]++
			l.mu.Unlock()
			return ret, nil
		},
	}
}
