// Package foreign describes the low-level call surface of a polyglot runtime.
//
// Everything a runtime exposes is reached through the Runtime interface:
// start and stop, source loading, name resolution, invocation, and one
// constructor and one reader per primitive value kind. Values live on the
// runtime's side and are referenced by opaque Handles; the caller owns every
// handle it creates or receives and must release it exactly once with
// DestroyValue.
//
// Two implementations ship with polycall:
//
//	host/      in-process runtime with pluggable language loaders
//	metacall/  cgo binding to libmetacall (build tag "metacall")
//
// # Status codes
//
// Lifecycle entry points return a Status, zero on success. Runtimes that
// can explain a failure implement Diagnoser.
//
// # Tags
//
// ValueID reports a Tag from the closed enumeration Bool (0) through
// Null (14). Tag values outside that range are unrecognized and must be
// treated as carrying no convertible value.
package foreign
