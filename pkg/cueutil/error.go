// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrInvalidDocument is the sentinel error wrapped by ValidationError.
var ErrInvalidDocument = errors.New("invalid CUE document")

type (
	// FieldError is one problem found in a document, located by a JSON-style
	// path such as "modules[0].dependencies[1].mapping".
	FieldError struct {
		Path    string
		Message string
	}

	// ValidationError reports every problem found while compiling, validating
	// or decoding one document.
	// It wraps ErrInvalidDocument for errors.Is() compatibility.
	ValidationError struct {
		FilePath string
		Fields   []FieldError
	}
)

// String renders the field error as "path: message".
func (f FieldError) String() string {
	if f.Path == "" {
		return f.Message
	}
	return f.Path + ": " + f.Message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch len(e.Fields) {
	case 0:
		return e.FilePath + ": invalid document"
	case 1:
		return e.FilePath + ": " + e.Fields[0].String()
	}
	lines := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		lines[i] = f.String()
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.FilePath, strings.Join(lines, "\n  "))
}

// Unwrap returns ErrInvalidDocument for errors.Is() compatibility.
func (e *ValidationError) Unwrap() error { return ErrInvalidDocument }

// FormatError converts a CUE error into a *ValidationError naming filePath and
// the path of every offending field. Errors that do not come from CUE are
// wrapped with the file path.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	verr := &ValidationError{FilePath: filePath}
	for _, e := range cueErrs {
		path := formatPath(cueerrors.Path(e))
		msg := e.Error()
		if path != "" && strings.HasPrefix(msg, path) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
		}
		verr.Fields = append(verr.Fields, FieldError{Path: path, Message: msg})
	}
	return verr
}

// formatPath turns a CUE selector path such as ["modules", "0", "id"] into
// "modules[0].id".
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize returns an error if data is larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxSize)
	}
	return nil
}
