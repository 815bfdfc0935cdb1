// Package loom provides the shared vocabulary of the loom generator
// framework: the scalar type model, compilation targets, identifier
// validation, and the user-facing error families shared by every
// subpackage.
//
// The framework itself lives in the generator package; the schema
// emission backends live under compiler/emit, and the minimal pipeline
// IR consumed by both lives in the pipeline package.
package loom
