// Package host is an in-process implementation of foreign.Runtime.
//
// Values live in a generation-checked handle table, and functions come from
// loaders registered per language tag. Loading is atomic: a load that fails
// or would shadow an already loaded name registers nothing.
//
//	rt := host.New(host.WithLoader(mock.New()))
//	rt.Initialize(ctx)
//	rt.LoadFromFile(ctx, "mock", nil)
//
//	v, err := bridge.Call(ctx, rt, "new_args", value.Str("x"))
//
// Failures never panic across the foreign surface. Lifecycle operations
// return a non-zero status and calls return the nil handle; LastError
// reports why.
package host
