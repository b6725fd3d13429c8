package bridge

import (
	"github.com/wippyai/polycall/foreign"
)

// handleSet owns argument handles until release.
type handleSet struct {
	values   foreign.Values
	handles  []foreign.Handle
	released bool
}

func newHandleSet(values foreign.Values, capacity int) *handleSet {
	return &handleSet{
		values:  values,
		handles: make([]foreign.Handle, 0, capacity),
	}
}

func (s *handleSet) add(h foreign.Handle) {
	s.handles = append(s.handles, h)
}

// release destroys every handle once. Later calls are no-ops.
func (s *handleSet) release() {
	if s.released {
		return
	}
	s.released = true
	for _, h := range s.handles {
		if h != foreign.NilHandle {
			s.values.DestroyValue(h)
		}
	}
	s.handles = nil
}

// owned guards a single handle.
type owned struct {
	values foreign.Values
	h      foreign.Handle
}

func own(values foreign.Values, h foreign.Handle) *owned {
	return &owned{values: values, h: h}
}

func (o *owned) release() {
	if o.h == foreign.NilHandle {
		return
	}
	o.values.DestroyValue(o.h)
	o.h = foreign.NilHandle
}
