// Package plan runs scripted sequences of loads and calls written in HCL.
//
// A plan names the sources to load and the calls to make, with optional
// expected results:
//
//	load "mock" {
//	  paths = ["test.mock"]
//	}
//
//	call "new_args" {
//	  args   = [str("a")]
//	  expect = "Hello World"
//	}
//
//	call "missing" {
//	  error = "not_found"
//	}
//
// Plain literals map to Str, Bool, Long or Double. The typed helpers short,
// int, long, float, double, char, str and bool produce exact values. An
// expectation written as a plain number matches any numeric result of the
// same value; a typed expectation must match kind and value.
//
// Relative load paths are resolved against the directory of the plan file.
package plan
