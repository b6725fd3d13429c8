// Package bridge invokes runtime functions with native values.
//
// A call runs the same protocol every time:
//
//  1. resolve the function name to a callable (nothing is allocated if
//     that fails)
//  2. encode each argument into a fresh runtime handle, in order
//  3. invoke the callable with the ordered handles
//  4. decode the result handle by its tag into a value.Value
//  5. release the result handle and every argument handle
//
// Every handle is owned by a guard whose release is deferred as soon as the
// handle exists, so early returns on encode failures or unrecognized result
// tags cannot leak runtime resources, and no handle is released twice.
//
// Decoding is driven by the runtime's tag only. Composite tags (buffer,
// array, map, ptr, future, function) and the null tag decode to value.Null.
// Tags outside the enumeration also decode to value.Null; a strict Caller
// reports them as ErrUnrecognizedResultTag instead.
package bridge
