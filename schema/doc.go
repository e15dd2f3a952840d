// Package schema implements a high-performance JSON Schema Draft 2020-12
// validator for Go that evaluates plain Go values (maps, slices, scalars),
// and compiles annotated jsona documents into such schemas (Compile,
// FromNode) to check jsona documents against them (Validator).
//
// Credit to https://github.com/santhosh-tekuri/jsonschema for format validators.
package schema
