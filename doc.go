// Package polycall calls functions written in other languages through a
// polyglot runtime, using plain Go values on both sides of the call.
//
// # Architecture Overview
//
//	polycall/            Lifecycle shim: Initialize, LoadFromFile, Call, Destroy
//	├── value/           Closed Value union exchanged with foreign functions
//	├── foreign/         Runtime contract: opaque handles, tags, status codes
//	├── bridge/          Call protocol: resolve, encode, invoke, decode, release
//	├── errors/          Structured errors with phase and kind
//	├── handle/          Generational handle table used by in-process runtimes
//	├── host/            In-process runtime with pluggable loaders
//	├── loader/          Loaders for the host runtime (mock, go, hcl, wasm)
//	├── metacall/        cgo binding to libmetacall (build tag "metacall")
//	└── plan/            HCL call plans for scripted smoke runs
//
// # Quick Start
//
//	rt := polycall.New(host.New(host.WithLoader(mock.New())))
//	defer rt.Destroy(ctx)
//
//	if err := rt.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := rt.LoadFromFile(ctx, "mock", "test.mock"); err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := rt.Call(ctx, "new_args", value.Str("a"))
//	fmt.Println(result) // "Hello World"
//
// # Values
//
// Arguments may be any primitive Value: Short, Int, Long, Float, Double,
// Bool, Char or Str. A composite argument fails the call with
// errors.ErrUnsupportedArgumentType: the foreign function is never invoked
// and the handles already created for earlier arguments are released.
// Numeric arguments to typed parameters are converted only when the value
// fits the parameter's range. Results come back as primitives or Null.
//
// # Thread Safety
//
// Runtime serializes its public methods. The underlying foreign runtime is
// never entered from more than one goroutine at a time through it.
package polycall
