package native

import (
	"context"

	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/host"
)

// Tag is the language tag of the native loader.
const Tag = "go"

// Loader serves functions from a Registry.
type Loader struct {
	reg *Registry
}

// New creates a loader over reg.
func New(reg *Registry) *Loader {
	return &Loader{reg: reg}
}

func (l *Loader) Tag() string { return Tag }

// Load returns the functions of every namespace in paths.
func (l *Loader) Load(_ context.Context, paths []string) ([]host.Function, error) {
	if len(paths) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "no namespace given")
	}

	var out []host.Function
	for _, ns := range paths {
		funcs, ok := l.reg.lookup(ns)
		if !ok {
			return nil, errors.NotFound(errors.PhaseLoad, "namespace", ns)
		}
		for _, f := range funcs {
			out = append(out, f)
		}
	}
	return out, nil
}

func (l *Loader) Close(context.Context) error { return nil }
