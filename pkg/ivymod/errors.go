// SPDX-License-Identifier: MPL-2.0

package ivymod

import (
	"errors"
	"fmt"

	"github.com/alfine/alfine/pkg/coord"
)

var (
	// ErrMalformedModule is the sentinel error wrapped by MalformedModuleError.
	ErrMalformedModule = errors.New("malformed module")
	// ErrUnknownConfiguration is the sentinel error wrapped by UnknownConfigurationError.
	ErrUnknownConfiguration = errors.New("unknown configuration")
	// ErrAlreadyRegistered is returned when a module is claimed by a second owner.
	ErrAlreadyRegistered = errors.New("module is already registered")
)

type (
	// MalformedModuleError reports invalid module metadata: an extends cycle,
	// a missing required descriptor field, or an unparsable mapping expression.
	// It wraps ErrMalformedModule for errors.Is() compatibility.
	MalformedModuleError struct {
		// Module is the offending module; zero when not yet known.
		Module coord.Coordinate
		// Source is the descriptor path or origin, if any.
		Source string
		Reason string
	}

	// UnknownConfigurationError is returned when a configuration name is not
	// declared by the module it is looked up in.
	// It wraps ErrUnknownConfiguration for errors.Is() compatibility.
	UnknownConfigurationError struct {
		Module coord.Coordinate
		Name   string
	}
)

// Error implements the error interface for MalformedModuleError.
func (e *MalformedModuleError) Error() string {
	subject := e.Source
	if !e.Module.IsZero() {
		subject = e.Module.String()
	}
	if subject == "" {
		return "malformed module: " + e.Reason
	}
	return fmt.Sprintf("malformed module %s: %s", subject, e.Reason)
}

// Unwrap returns ErrMalformedModule for errors.Is() compatibility.
func (e *MalformedModuleError) Unwrap() error { return ErrMalformedModule }

// Error implements the error interface for UnknownConfigurationError.
func (e *UnknownConfigurationError) Error() string {
	if e.Module.IsZero() {
		return fmt.Sprintf("unknown configuration %q", e.Name)
	}
	return fmt.Sprintf("unknown configuration %q in module %s", e.Name, e.Module)
}

// Unwrap returns ErrUnknownConfiguration for errors.Is() compatibility.
func (e *UnknownConfigurationError) Unwrap() error { return ErrUnknownConfiguration }

func malformed(id coord.Coordinate, format string, args ...any) *MalformedModuleError {
	return &MalformedModuleError{Module: id, Reason: fmt.Sprintf(format, args...)}
}
