// Package errors provides structured error types for polycall.
//
// Errors are categorized by Phase (where in the call protocol the error
// occurred) and Kind (error category). The Error type carries the call
// path, the value kind and foreign tag involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindUnsupported).
//		Path("sum", "arg[1]").
//		ValueKind("array").
//		Detail("no foreign encoding").
//		Build()
//
// Or use convenience constructors for the protocol failures:
//
//	err := errors.FunctionNotFound("new_args")
//	err := errors.UnsupportedArgument("sum", 1, "array")
//
// All errors implement the standard error interface and support errors.Is/As.
// Matching is by Phase and Kind, so the exported sentinels work as targets:
//
//	if errors.Is(err, errors.ErrFunctionNotFound) { ... }
package errors
