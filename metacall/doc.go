// Package metacall binds foreign.Runtime to libmetacall.
//
// The binding is compiled only with the metacall build tag and cgo:
//
//	go build -tags metacall ./...
//
// Other builds get a stub whose New reports that the runtime is
// unavailable. libmetacall keeps global state, so at most one Runtime
// exists per process; New fails while another is alive.
package metacall
