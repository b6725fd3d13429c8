// Package wasm loads core WebAssembly modules as runtime functions.
//
// Modules run on wazero with WASI preview1 available. Every exported
// function whose core signature uses only numeric types becomes a
// function typed from that signature:
//
//	i32  int
//	i64  long
//	f32  float
//	f64  double
//
// A module may carry a WIT sidecar next to it (add.wasm, add.wit) listing
// the exports with richer types:
//
//	add: func(a: s32, b: s32) -> s32;
//	greet: func(name: string) -> string;
//
// Sidecar types are bool, char, s8 to s64, u8 to u64, f32, f64 and string.
// Strings follow the canonical ABI: arguments are copied into guest memory
// through cabi_realloc and passed as pointer and length, and a string
// result is read from the return area whose address the function returns.
package wasm
