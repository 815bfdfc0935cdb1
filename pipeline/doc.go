// Package pipeline holds the small expression and pipeline IR the
// generator framework builds against: scalar expressions with provable
// equality, runtime parameters with layout constraints, named
// functions, pipelines that can be realized in-process, and compiled
// module artifacts.
//
// The IR is deliberately minimal. It exists so that generator
// declarations, cross-build constraint tracking, and the end-to-end
// build surface are concrete and testable; it does not attempt real
// code generation.
package pipeline
