// Package hclfunc defines runtime functions as HCL expressions.
//
// A source file holds function blocks. Parameters become variables in the
// result expression, which may use the usual string, numeric and
// collection functions:
//
//	function "greet" {
//	  param "name" { type = "string" }
//	  result = "Hello, ${title(name)}"
//	}
//
//	function "hypot" {
//	  param "a" { type = "double" }
//	  param "b" { type = "double" }
//	  returns = "double"
//	  result  = pow(a * a + b * b, 0.5)
//	}
//
// A parameter without a type accepts any value. Without returns, the result
// tag follows the expression value: strings, bools, whole numbers as long
// and other numbers as double. returns = "void" discards the result.
package hclfunc
