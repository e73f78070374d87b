// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema.
//
// Parsing always follows the same three steps: compile the schema, compile
// the user document and unify it with a schema definition, then validate and
// decode. Errors carry the file name and a JSON-style path to the offending
// field.
//
//	//go:embed config_schema.cue
//	var schema string
//
//	result, err := cueutil.ParseAndDecodeString[map[string]any](
//	    schema, data, "#Config",
//	    cueutil.WithFilename("config.cue"),
//	    cueutil.WithConcrete(false),
//	)
package cueutil
