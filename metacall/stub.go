//go:build !metacall || !cgo

package metacall

import (
	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/foreign"
)

// Available reports whether the binding was compiled in.
func Available() bool { return false }

// New always fails in builds without libmetacall.
func New(opts ...Option) (foreign.Runtime, error) {
	newConfig(opts).logger.Debug("libmetacall binding not compiled in")
	return nil, errors.Unavailable("libmetacall (build with -tags metacall)")
}
