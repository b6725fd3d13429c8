// Package native exposes Go functions as runtime functions.
//
// Functions are registered under a namespace, either one at a time or as
// every exported method of a Host value:
//
//	reg := native.NewRegistry()
//	reg.RegisterFunc("math", "add", func(a, b int32) int32 { return a + b })
//	reg.RegisterHost(&Greeter{}) // Greeter.SayHello becomes say_hello
//
//	rt := host.New(host.WithLoader(native.New(reg)))
//	rt.LoadFromFile(ctx, native.Tag, []string{"math"})
//
// Paths passed to LoadFromFile name namespaces. A function may take a
// leading context.Context and return a trailing error. Parameter and result
// types map to tags as follows:
//
//	bool     bool
//	int8     char
//	int16    short
//	int32    int
//	int64    long (also int)
//	float32  float
//	float64  double
//	string   string
//	Datum    any tag, passed through unchanged
package native
