package foreign

import (
	"context"
)

// Handle is an opaque reference to a runtime-owned value.
// The zero Handle is the null sentinel.
type Handle uintptr

// Callable is an opaque reference to a resolved runtime function.
// The zero Callable is the null sentinel.
type Callable uintptr

const (
	NilHandle   Handle   = 0
	NilCallable Callable = 0
)

// Status is a lifecycle result code. Zero means success.
type Status int

const (
	StatusOK     Status = 0
	StatusFailed Status = 1
)

// OK reports whether s signals success.
func (s Status) OK() bool {
	return s == StatusOK
}

// Runtime is the fixed call surface of a polyglot runtime.
//
// Implementations are not required to be safe for concurrent use; callers
// drive a Runtime from one logical thread.
type Runtime interface {
	Values

	// Initialize starts the runtime.
	Initialize(ctx context.Context) Status

	// Destroy stops the runtime and releases everything it holds.
	Destroy(ctx context.Context) Status

	// LoadFromFile loads source files written in the language identified
	// by tag.
	LoadFromFile(ctx context.Context, tag string, paths []string) Status

	// Function resolves a loaded function by name, or returns NilCallable.
	Function(name string) Callable

	// Call invokes fn with args in order. It returns NilHandle when the
	// function produced no value. The returned handle belongs to the caller.
	Call(ctx context.Context, fn Callable, args []Handle) Handle
}

// Values constructs, inspects and releases runtime values.
type Values interface {
	CreateShort(v int16) Handle
	CreateInt(v int32) Handle
	CreateLong(v int64) Handle
	CreateFloat(v float32) Handle
	CreateDouble(v float64) Handle
	CreateBool(v bool) Handle
	CreateChar(v int8) Handle

	// CreateString copies s including any NUL bytes; the length is
	// explicit, not terminator based.
	CreateString(s string) Handle

	// DestroyValue releases h. Releasing NilHandle is a no-op.
	DestroyValue(h Handle)

	// ValueID reports the tag of h.
	ValueID(h Handle) Tag

	// Readers are only defined for handles whose tag matches.
	ToShort(h Handle) int16
	ToInt(h Handle) int32
	ToLong(h Handle) int64
	ToFloat(h Handle) float32
	ToDouble(h Handle) float64
	ToBool(h Handle) bool
	ToChar(h Handle) int8
	ToString(h Handle) string
}

// Param describes one parameter of a runtime function.
type Param struct {
	Name string
	Tag  Tag

	// Typed is false when the function accepts any tag in this position.
	Typed bool
}

// FunctionInfo describes a callable for listing and argument prompting.
type FunctionInfo struct {
	Name     string
	Language string
	Params   []Param
	Result   Tag

	// Void functions return NilHandle.
	Void bool

	// Variadic functions accept any number of arguments after Params.
	Variadic bool
}

// Inspector is implemented by runtimes that can enumerate loaded functions.
type Inspector interface {
	Functions() []FunctionInfo
}

// Diagnoser is implemented by runtimes that record why the last lifecycle
// operation or call failed. LastError returns nil when the last operation
// succeeded and clears the recorded error. The slot is per runtime, not per
// caller: drive an operation and its LastError from one goroutine at a time.
type Diagnoser interface {
	LastError() error
}
