// SPDX-License-Identifier: MPL-2.0

package buildorder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alfine/alfine/pkg/coord"
)

var (
	// ErrUnresolvedDependency is wrapped by UnresolvedDependencyError.
	ErrUnresolvedDependency = errors.New("unresolved dependency")
	// ErrDependencyCycle is wrapped by CycleError.
	ErrDependencyCycle = errors.New("dependency cycle")
)

type (
	// UnresolvedDependencyError reports a dependency edge whose target could
	// not be resolved. Unwrap exposes both ErrUnresolvedDependency and the
	// resolver's error.
	UnresolvedDependencyError struct {
		Dependency coord.Coordinate
		// Trace is the active path from the root to the depending module.
		Trace []coord.Coordinate
		Err   error
	}

	// CycleError reports a dependency cycle found in strict mode.
	// It wraps ErrDependencyCycle for errors.Is() compatibility.
	CycleError struct {
		// Cycle is the closed path, first coordinate repeated last.
		Cycle []coord.Coordinate
	}
)

// Error implements the error interface for UnresolvedDependencyError.
func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("unresolved dependency %s (via %s): %v", e.Dependency, tracePath(e.Trace), e.Err)
}

// Unwrap returns ErrUnresolvedDependency and the underlying cause.
func (e *UnresolvedDependencyError) Unwrap() []error {
	return []error{ErrUnresolvedDependency, e.Err}
}

// Error implements the error interface for CycleError.
func (e *CycleError) Error() string {
	return "dependency cycle: " + tracePath(e.Cycle)
}

// Unwrap returns ErrDependencyCycle for errors.Is() compatibility.
func (e *CycleError) Unwrap() error { return ErrDependencyCycle }

func tracePath(path []coord.Coordinate) string {
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(coord.Strings(path), " -> ")
}
