package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseInit    Phase = "init"    // runtime start
	PhaseLoad    Phase = "load"    // source loading
	PhaseResolve Phase = "resolve" // name to callable
	PhaseEncode  Phase = "encode"  // Value to foreign handle
	PhaseCall    Phase = "call"    // foreign invocation
	PhaseDecode  Phase = "decode"  // foreign handle to Value
	PhaseRuntime Phase = "runtime" // lifecycle bookkeeping
	PhaseParse   Phase = "parse"   // plan/WIT/HCL parsing
	PhaseHost    Phase = "host"    // native function registration
)

// Kind categorizes the error
type Kind string

const (
	KindInitialization Kind = "initialization"
	KindLoad           Kind = "load"
	KindNotFound       Kind = "not_found"
	KindUnsupported    Kind = "unsupported"
	KindInvalidTag     Kind = "invalid_tag"
	KindCallFailed     Kind = "call_failed"
	KindNotInitialized Kind = "not_initialized"
	KindOverflow       Kind = "overflow"
	KindTypeMismatch   Kind = "type_mismatch"
	KindInvalidInput   Kind = "invalid_input"
	KindInvalidData    Kind = "invalid_data"
	KindUnavailable    Kind = "unavailable"
	KindRegistration   Kind = "registration"
	KindAllocation     Kind = "allocation"
)

// Sentinels for errors.Is. Only Phase and Kind take part in matching.
var (
	ErrInitializationFailed    = &Error{Phase: PhaseInit, Kind: KindInitialization}
	ErrLoadFailed              = &Error{Phase: PhaseLoad, Kind: KindLoad}
	ErrFunctionNotFound        = &Error{Phase: PhaseResolve, Kind: KindNotFound}
	ErrUnsupportedArgumentType = &Error{Phase: PhaseEncode, Kind: KindUnsupported}
	ErrUnrecognizedResultTag   = &Error{Phase: PhaseDecode, Kind: KindInvalidTag}
	ErrCallFailed              = &Error{Phase: PhaseCall, Kind: KindCallFailed}
	ErrNotInitialized          = &Error{Phase: PhaseRuntime, Kind: KindNotInitialized}
)

// Error is the structured error type used throughout polycall
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	ValueKind string
	Tag       string
	Detail    string
	Path      []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.ValueKind != "" || e.Tag != "" {
		b.WriteString(": ")
		if e.ValueKind != "" && e.Tag != "" {
			b.WriteString("value ")
			b.WriteString(e.ValueKind)
			b.WriteString(", foreign tag ")
			b.WriteString(e.Tag)
		} else if e.ValueKind != "" {
			b.WriteString("value ")
			b.WriteString(e.ValueKind)
		} else {
			b.WriteString("foreign tag ")
			b.WriteString(e.Tag)
		}
	}

	if e.Detail != "" {
		if e.ValueKind != "" || e.Tag != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the call path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// ValueKind sets the value variant name
func (b *Builder) ValueKind(k string) *Builder {
	b.err.ValueKind = k
	return b
}

// Tag sets the foreign tag name
func (b *Builder) Tag(t string) *Builder {
	b.err.Tag = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// ArgPath returns the path element naming argument i of fn.
func ArgPath(fn string, i int) []string {
	return []string{fn, fmt.Sprintf("arg[%d]", i)}
}

// Protocol errors

// InitializationFailed reports a non-zero status from runtime start
func InitializationFailed(status int, cause error) *Error {
	return &Error{
		Phase:  PhaseInit,
		Kind:   KindInitialization,
		Detail: fmt.Sprintf("runtime start returned status %d", status),
		Value:  status,
		Cause:  cause,
	}
}

// LoadFailed reports a non-zero status from source loading
func LoadFailed(tag string, paths []string, status int, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoad,
		Path:   []string{tag},
		Detail: fmt.Sprintf("load of %s returned status %d", strings.Join(paths, ", "), status),
		Value:  status,
		Cause:  cause,
	}
}

// FunctionNotFound reports a name that resolved to the null callable
func FunctionNotFound(name string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindNotFound,
		Path:   []string{name},
		Detail: fmt.Sprintf("function %q not found", name),
	}
}

// UnsupportedArgument reports an argument variant without a foreign encoding
func UnsupportedArgument(fn string, index int, valueKind string) *Error {
	return &Error{
		Phase:     PhaseEncode,
		Kind:      KindUnsupported,
		Path:      ArgPath(fn, index),
		ValueKind: valueKind,
		Detail:    "no foreign encoding",
	}
}

// UnrecognizedTag reports a result tag outside the known enumeration
func UnrecognizedTag(fn string, tag int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidTag,
		Path:   []string{fn},
		Tag:    fmt.Sprintf("%d", tag),
		Detail: "unrecognized result tag",
		Value:  tag,
	}
}

// AllocationFailed reports a value constructor that returned the null handle
func AllocationFailed(fn string, index int, tag string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindAllocation,
		Path:   ArgPath(fn, index),
		Tag:    tag,
		Detail: "runtime returned no handle",
	}
}

// CallFailed reports an invocation the runtime rejected
func CallFailed(fn string, cause error) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindCallFailed,
		Path:   []string{fn},
		Detail: "invocation failed",
		Cause:  cause,
	}
}

// NotInitialized reports an operation on a runtime that is not running
func NotInitialized(op string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s requires an initialized runtime", op),
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Tag:    target,
		Detail: fmt.Sprintf("value %v overflows %s", value, target),
		Value:  value,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, valueKind, tag string) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindTypeMismatch,
		Path:      path,
		ValueKind: valueKind,
		Tag:       tag,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Unavailable reports a backend compiled out of this binary
func Unavailable(what string) *Error {
	return &Error{
		Phase:  PhaseInit,
		Kind:   KindUnavailable,
		Detail: fmt.Sprintf("%s is not available in this build", what),
	}
}

// Registration creates a registration error
func Registration(namespace, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s.%s", namespace, name),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
