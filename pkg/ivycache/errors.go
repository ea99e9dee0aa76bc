// SPDX-License-Identifier: MPL-2.0

package ivycache

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alfine/alfine/pkg/coord"
)

var (
	// ErrDuplicateModuleDefinition is wrapped by DuplicateModuleDefinitionError.
	ErrDuplicateModuleDefinition = errors.New("duplicate module definition")
	// ErrOracleResolutionFailure is wrapped by OracleError.
	ErrOracleResolutionFailure = errors.New("oracle resolution failure")
	// ErrAmbiguousClasspathOutput is wrapped by AmbiguousClasspathError.
	ErrAmbiguousClasspathOutput = errors.New("ambiguous classpath output")
	// ErrInMemoryCache is returned when a cache without an oracle is asked for
	// something only the oracle can provide.
	ErrInMemoryCache = errors.New("in-memory cache cannot consult the oracle")
	// ErrNoConfigurations is returned for a classpath query without configurations.
	ErrNoConfigurations = errors.New("no configurations requested")
)

type (
	// DuplicateModuleDefinitionError is returned by Register when a different
	// definition of the coordinate is already memoized.
	// It wraps ErrDuplicateModuleDefinition for errors.Is() compatibility.
	DuplicateModuleDefinitionError struct {
		Module coord.Coordinate
		// ExistingSource and NewSource are the origins of both definitions.
		ExistingSource string
		NewSource      string
	}

	// OracleError reports a failed oracle invocation.
	// It wraps ErrOracleResolutionFailure for errors.Is() compatibility.
	OracleError struct {
		Module coord.Coordinate
		// Op is "metadata" or "classpath".
		Op    string
		Confs []string
		// Output holds what the oracle printed, if captured.
		Output string
		Err    error
	}

	// AmbiguousClasspathError is returned when a classpath query does not
	// produce exactly one non-empty line.
	// It wraps ErrAmbiguousClasspathOutput for errors.Is() compatibility.
	AmbiguousClasspathError struct {
		Module coord.Coordinate
		Confs  []string
		Lines  []string
	}
)

// Error implements the error interface for DuplicateModuleDefinitionError.
func (e *DuplicateModuleDefinitionError) Error() string {
	return fmt.Sprintf("a different definition of module %s is already cached (existing from %s, new from %s); "+
		"register with override to replace it", e.Module, sourceLabel(e.ExistingSource), sourceLabel(e.NewSource))
}

// Unwrap returns ErrDuplicateModuleDefinition for errors.Is() compatibility.
func (e *DuplicateModuleDefinitionError) Unwrap() error { return ErrDuplicateModuleDefinition }

// Error implements the error interface for OracleError.
func (e *OracleError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "oracle %s resolution failed for %s", e.Op, e.Module)
	if len(e.Confs) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Confs, ","))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns ErrOracleResolutionFailure and the underlying cause.
func (e *OracleError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrOracleResolutionFailure}
	}
	return []error{ErrOracleResolutionFailure, e.Err}
}

// Error implements the error interface for AmbiguousClasspathError.
func (e *AmbiguousClasspathError) Error() string {
	confs := strings.Join(e.Confs, ",")
	if len(e.Lines) == 0 || (len(e.Lines) == 1 && strings.TrimSpace(e.Lines[0]) == "") {
		return fmt.Sprintf("empty classpath output for %s (%s)", e.Module, confs)
	}
	return fmt.Sprintf("unexpected classpath output for %s (%s): got %d lines, want exactly one",
		e.Module, confs, len(e.Lines))
}

// Unwrap returns ErrAmbiguousClasspathOutput for errors.Is() compatibility.
func (e *AmbiguousClasspathError) Unwrap() error { return ErrAmbiguousClasspathOutput }

func sourceLabel(s string) string {
	if s == "" {
		return "unknown source"
	}
	return s
}
