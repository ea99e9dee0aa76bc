// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
// Every CUE file alfine reads (the configuration file and the local override
// declarations) goes through the same flow: compile the schema, compile the
// document and unify it with the schema's root definition, then validate and
// decode into a Go struct. Errors carry the file name and a JSON-style path to
// the offending field.
//
//	//go:embed overrides_schema.cue
//	var schema []byte
//
//	res, err := cueutil.DecodeFile[Declarations](schema, path, "#Overrides")
//	if err != nil {
//	    return nil, err
//	}
//	return res.Value, nil
package cueutil
