//go:build metacall && cgo

package metacall

/*
#cgo LDFLAGS: -lmetacall
#include <stdlib.h>
#include <metacall/metacall.h>

static void* pc_create_bool(int b) { return metacall_value_create_bool(b != 0); }
static int pc_to_bool(void* v) { return metacall_value_to_bool(v) != 0; }
static int pc_value_id(void* v) { return (int)metacall_value_id(v); }
*/
import "C"

import (
	"context"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/foreign"
)

var claimed atomic.Bool

// Runtime drives the process-wide libmetacall instance.
type Runtime struct {
	logger *zap.Logger
	closed atomic.Bool
}

var _ foreign.Runtime = (*Runtime)(nil)

// Available reports whether the binding was compiled in.
func Available() bool { return true }

// New claims libmetacall for this process.
func New(opts ...Option) (foreign.Runtime, error) {
	if !claimed.CompareAndSwap(false, true) {
		return nil, errors.InvalidInput(errors.PhaseInit, "libmetacall is already in use by another runtime")
	}
	cfg := newConfig(opts)
	return &Runtime{logger: cfg.logger}, nil
}

func ptr[T ~uintptr](h T) unsafe.Pointer {
	return unsafe.Pointer(uintptr(h))
}

func (r *Runtime) Initialize(context.Context) foreign.Status {
	st := foreign.Status(C.metacall_initialize())
	r.logger.Debug("metacall_initialize", zap.Int("status", int(st)))
	return st
}

// Destroy tears libmetacall down and releases the process claim.
func (r *Runtime) Destroy(context.Context) foreign.Status {
	st := foreign.Status(C.metacall_destroy())
	r.logger.Debug("metacall_destroy", zap.Int("status", int(st)))
	if r.closed.CompareAndSwap(false, true) {
		claimed.Store(false)
	}
	return st
}

func (r *Runtime) LoadFromFile(_ context.Context, tag string, paths []string) foreign.Status {
	ctag := C.CString(tag)
	defer C.free(unsafe.Pointer(ctag))

	cpaths := make([]*C.char, len(paths))
	for i, p := range paths {
		cpaths[i] = C.CString(p)
	}
	defer func() {
		for _, p := range cpaths {
			C.free(unsafe.Pointer(p))
		}
	}()

	var argv **C.char
	if len(cpaths) > 0 {
		argv = &cpaths[0]
	}
	st := foreign.Status(C.metacall_load_from_file(ctag, argv, C.size_t(len(cpaths)), nil))
	r.logger.Debug("metacall_load_from_file", zap.String("tag", tag), zap.Strings("paths", paths), zap.Int("status", int(st)))
	return st
}

func (r *Runtime) Function(name string) foreign.Callable {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return foreign.Callable(uintptr(C.metacall_function(cname)))
}

func (r *Runtime) Call(_ context.Context, fn foreign.Callable, args []foreign.Handle) foreign.Handle {
	argv := make([]unsafe.Pointer, len(args))
	for i, h := range args {
		argv[i] = ptr(h)
	}
	var base *unsafe.Pointer
	if len(argv) > 0 {
		base = &argv[0]
	}
	return foreign.Handle(uintptr(C.metacallfv_s(ptr(fn), base, C.size_t(len(argv)))))
}

func (r *Runtime) CreateShort(v int16) foreign.Handle {
	return foreign.Handle(uintptr(C.metacall_value_create_short(C.short(v))))
}

func (r *Runtime) CreateInt(v int32) foreign.Handle {
	return foreign.Handle(uintptr(C.metacall_value_create_int(C.int(v))))
}

func (r *Runtime) CreateLong(v int64) foreign.Handle {
	return foreign.Handle(uintptr(C.metacall_value_create_long(C.long(v))))
}

func (r *Runtime) CreateFloat(v float32) foreign.Handle {
	return foreign.Handle(uintptr(C.metacall_value_create_float(C.float(v))))
}

func (r *Runtime) CreateDouble(v float64) foreign.Handle {
	return foreign.Handle(uintptr(C.metacall_value_create_double(C.double(v))))
}

func (r *Runtime) CreateBool(v bool) foreign.Handle {
	var b C.int
	if v {
		b = 1
	}
	return foreign.Handle(uintptr(C.pc_create_bool(b)))
}

func (r *Runtime) CreateChar(v int8) foreign.Handle {
	return foreign.Handle(uintptr(C.metacall_value_create_char(C.char(v))))
}

// CreateString passes the explicit length so embedded NUL bytes survive.
func (r *Runtime) CreateString(s string) foreign.Handle {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	return foreign.Handle(uintptr(C.metacall_value_create_string(cs, C.size_t(len(s)))))
}

func (r *Runtime) DestroyValue(h foreign.Handle) {
	if h == foreign.NilHandle {
		return
	}
	C.metacall_value_destroy(ptr(h))
}

// tags maps libmetacall value ids to foreign tags.
var tags = map[C.int]foreign.Tag{
	C.int(C.METACALL_BOOL):     foreign.TagBool,
	C.int(C.METACALL_CHAR):     foreign.TagChar,
	C.int(C.METACALL_SHORT):    foreign.TagShort,
	C.int(C.METACALL_INT):      foreign.TagInt,
	C.int(C.METACALL_LONG):     foreign.TagLong,
	C.int(C.METACALL_FLOAT):    foreign.TagFloat,
	C.int(C.METACALL_DOUBLE):   foreign.TagDouble,
	C.int(C.METACALL_STRING):   foreign.TagString,
	C.int(C.METACALL_BUFFER):   foreign.TagBuffer,
	C.int(C.METACALL_ARRAY):    foreign.TagArray,
	C.int(C.METACALL_MAP):      foreign.TagMap,
	C.int(C.METACALL_PTR):      foreign.TagPtr,
	C.int(C.METACALL_FUTURE):   foreign.TagFuture,
	C.int(C.METACALL_FUNCTION): foreign.TagFunction,
	C.int(C.METACALL_NULL):     foreign.TagNull,
}

// unknownTag is outside the foreign enumeration.
const unknownTag foreign.Tag = -1

func (r *Runtime) ValueID(h foreign.Handle) foreign.Tag {
	id := C.pc_value_id(ptr(h))
	if t, ok := tags[id]; ok {
		return t
	}
	r.logger.Debug("unmapped metacall value id", zap.Int("id", int(id)))
	return unknownTag
}

func (r *Runtime) ToShort(h foreign.Handle) int16 { return int16(C.metacall_value_to_short(ptr(h))) }
func (r *Runtime) ToInt(h foreign.Handle) int32   { return int32(C.metacall_value_to_int(ptr(h))) }
func (r *Runtime) ToLong(h foreign.Handle) int64  { return int64(C.metacall_value_to_long(ptr(h))) }
func (r *Runtime) ToBool(h foreign.Handle) bool   { return C.pc_to_bool(ptr(h)) != 0 }
func (r *Runtime) ToChar(h foreign.Handle) int8   { return int8(C.metacall_value_to_char(ptr(h))) }

func (r *Runtime) ToFloat(h foreign.Handle) float32 {
	return float32(C.metacall_value_to_float(ptr(h)))
}

func (r *Runtime) ToDouble(h foreign.Handle) float64 {
	return float64(C.metacall_value_to_double(ptr(h)))
}

// ToString copies the string payload using the stored size, which counts
// the terminator.
func (r *Runtime) ToString(h foreign.Handle) string {
	p := ptr(h)
	s := C.metacall_value_to_string(p)
	if s == nil {
		return ""
	}
	n := C.metacall_value_size(p)
	if n == 0 {
		return ""
	}
	return C.GoStringN(s, C.int(n-1))
}
