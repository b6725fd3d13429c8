package bridge

import (
	"context"
	"fmt"

	"github.com/wippyai/polycall/foreign"
)

// fakeValue is a runtime-side value held by fakeRuntime.
type fakeValue struct {
	s   string
	i   int64
	f   float64
	tag foreign.Tag
}

type fakeFunc func(args []fakeValue) (fakeValue, bool)

// fakeRuntime records every handle it hands out and every release.
type fakeRuntime struct {
	live       map[foreign.Handle]fakeValue
	funcs      map[string]fakeFunc
	lastErr    error
	names      []string
	doubleFree []foreign.Handle
	created    int
	destroyed  int
	next       foreign.Handle

	// failCreateAt makes the n-th constructor call (1-based) return NilHandle.
	failCreateAt int
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		live:  make(map[foreign.Handle]fakeValue),
		funcs: make(map[string]fakeFunc),
	}
}

func (r *fakeRuntime) define(name string, fn fakeFunc) {
	r.funcs[name] = fn
	r.names = append(r.names, name)
}

func (r *fakeRuntime) alloc(v fakeValue) foreign.Handle {
	if r.failCreateAt > 0 && r.created+1 == r.failCreateAt {
		r.failCreateAt = 0
		return foreign.NilHandle
	}
	r.next++
	r.created++
	r.live[r.next] = v
	return r.next
}

func (r *fakeRuntime) Initialize(context.Context) foreign.Status { return foreign.StatusOK }
func (r *fakeRuntime) Destroy(context.Context) foreign.Status    { return foreign.StatusOK }

func (r *fakeRuntime) LoadFromFile(context.Context, string, []string) foreign.Status {
	return foreign.StatusOK
}

func (r *fakeRuntime) Function(name string) foreign.Callable {
	for i, n := range r.names {
		if n == name {
			return foreign.Callable(i + 1)
		}
	}
	return foreign.NilCallable
}

func (r *fakeRuntime) Call(_ context.Context, fn foreign.Callable, args []foreign.Handle) foreign.Handle {
	r.lastErr = nil
	vals := make([]fakeValue, len(args))
	for i, h := range args {
		v, ok := r.live[h]
		if !ok {
			r.lastErr = fmt.Errorf("argument %d: dead handle %d", i, h)
			return foreign.NilHandle
		}
		vals[i] = v
	}
	res, ok := r.funcs[r.names[fn-1]](vals)
	if !ok {
		return foreign.NilHandle
	}
	return r.alloc(res)
}

func (r *fakeRuntime) LastError() error {
	err := r.lastErr
	r.lastErr = nil
	return err
}

func (r *fakeRuntime) CreateShort(v int16) foreign.Handle {
	return r.alloc(fakeValue{tag: foreign.TagShort, i: int64(v)})
}
func (r *fakeRuntime) CreateInt(v int32) foreign.Handle {
	return r.alloc(fakeValue{tag: foreign.TagInt, i: int64(v)})
}
func (r *fakeRuntime) CreateLong(v int64) foreign.Handle {
	return r.alloc(fakeValue{tag: foreign.TagLong, i: v})
}
func (r *fakeRuntime) CreateFloat(v float32) foreign.Handle {
	return r.alloc(fakeValue{tag: foreign.TagFloat, f: float64(v)})
}
func (r *fakeRuntime) CreateDouble(v float64) foreign.Handle {
	return r.alloc(fakeValue{tag: foreign.TagDouble, f: v})
}
func (r *fakeRuntime) CreateBool(v bool) foreign.Handle {
	var i int64
	if v {
		i = 1
	}
	return r.alloc(fakeValue{tag: foreign.TagBool, i: i})
}
func (r *fakeRuntime) CreateChar(v int8) foreign.Handle {
	return r.alloc(fakeValue{tag: foreign.TagChar, i: int64(v)})
}
func (r *fakeRuntime) CreateString(s string) foreign.Handle {
	return r.alloc(fakeValue{tag: foreign.TagString, s: s})
}

func (r *fakeRuntime) DestroyValue(h foreign.Handle) {
	if _, ok := r.live[h]; !ok {
		r.doubleFree = append(r.doubleFree, h)
		return
	}
	delete(r.live, h)
	r.destroyed++
}

func (r *fakeRuntime) ValueID(h foreign.Handle) foreign.Tag { return r.live[h].tag }
func (r *fakeRuntime) ToShort(h foreign.Handle) int16      { return int16(r.live[h].i) }
func (r *fakeRuntime) ToInt(h foreign.Handle) int32        { return int32(r.live[h].i) }
func (r *fakeRuntime) ToLong(h foreign.Handle) int64       { return r.live[h].i }
func (r *fakeRuntime) ToFloat(h foreign.Handle) float32    { return float32(r.live[h].f) }
func (r *fakeRuntime) ToDouble(h foreign.Handle) float64   { return r.live[h].f }
func (r *fakeRuntime) ToBool(h foreign.Handle) bool        { return r.live[h].i != 0 }
func (r *fakeRuntime) ToChar(h foreign.Handle) int8        { return int8(r.live[h].i) }
func (r *fakeRuntime) ToString(h foreign.Handle) string    { return r.live[h].s }

func echo(args []fakeValue) (fakeValue, bool) {
	return args[0], true
}

func returning(v fakeValue) fakeFunc {
	return func([]fakeValue) (fakeValue, bool) { return v, true }
}

func void([]fakeValue) (fakeValue, bool) {
	return fakeValue{}, false
}
