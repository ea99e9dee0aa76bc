// SPDX-License-Identifier: MPL-2.0

package coord

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins the three coordinate fields in the canonical string form.
const Separator = ":"

var (
	// ErrMalformedCoordinate is the sentinel error wrapped by MalformedCoordinateError.
	ErrMalformedCoordinate = errors.New("malformed coordinate")
	// ErrInvalidOrganization is returned when an Organization value is empty or contains Separator.
	ErrInvalidOrganization = errors.New("invalid organization")
	// ErrInvalidName is returned when a Name value is empty or contains Separator.
	ErrInvalidName = errors.New("invalid module name")
	// ErrInvalidRevision is returned when a Revision value is empty or contains Separator.
	ErrInvalidRevision = errors.New("invalid revision")
)

type (
	// Organization is the publishing organization of a module (e.g., "org.apache.xmlgraphics").
	Organization string

	// Name is the module name within its organization (e.g., "batik-all").
	Name string

	// Revision is an exact, pinned module revision (e.g., "1.16").
	// Revisions are never ranges or constraints.
	Revision string

	// Coordinate identifies a module by organization, name and revision.
	Coordinate struct {
		Organization Organization
		Name         Name
		Revision     Revision
	}

	// MalformedCoordinateError is returned when text does not split into exactly
	// three non-empty colon-separated parts, or when a Coordinate has an empty field.
	// It wraps ErrMalformedCoordinate for errors.Is() compatibility.
	MalformedCoordinateError struct {
		Text   string
		Reason string
	}
)

// Error implements the error interface for MalformedCoordinateError.
func (e *MalformedCoordinateError) Error() string {
	return fmt.Sprintf("malformed coordinate %q: %s", e.Text, e.Reason)
}

// Unwrap returns ErrMalformedCoordinate for errors.Is() compatibility.
func (e *MalformedCoordinateError) Unwrap() error { return ErrMalformedCoordinate }

// Validate returns nil if the Organization is non-empty and free of Separator.
func (o Organization) Validate() error {
	return validateField(string(o), ErrInvalidOrganization)
}

// String returns the string representation of the Organization.
func (o Organization) String() string { return string(o) }

// Validate returns nil if the Name is non-empty and free of Separator.
func (n Name) Validate() error {
	return validateField(string(n), ErrInvalidName)
}

// String returns the string representation of the Name.
func (n Name) String() string { return string(n) }

// Validate returns nil if the Revision is non-empty and free of Separator.
func (r Revision) Validate() error {
	return validateField(string(r), ErrInvalidRevision)
}

// String returns the string representation of the Revision.
func (r Revision) String() string { return string(r) }

func validateField(v string, sentinel error) error {
	if strings.TrimSpace(v) == "" {
		return sentinel
	}
	if strings.Contains(v, Separator) {
		return fmt.Errorf("%w: %q contains %q", sentinel, v, Separator)
	}
	return nil
}

// New builds a Coordinate and validates it.
func New(org, name, rev string) (Coordinate, error) {
	c := Coordinate{Organization: Organization(org), Name: Name(name), Revision: Revision(rev)}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// MustNew is like New but panics on invalid input. Intended for tests and
// statically known coordinates.
func MustNew(org, name, rev string) Coordinate {
	c, err := New(org, name, rev)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse parses the canonical "organization:name:revision" form.
func Parse(text string) (Coordinate, error) {
	parts := strings.Split(text, Separator)
	if len(parts) != 3 {
		return Coordinate{}, &MalformedCoordinateError{
			Text:   text,
			Reason: fmt.Sprintf("expected 3 colon-separated parts, got %d", len(parts)),
		}
	}
	c := Coordinate{
		Organization: Organization(parts[0]),
		Name:         Name(parts[1]),
		Revision:     Revision(parts[2]),
	}
	if err := c.fieldErrors(); err != nil {
		return Coordinate{}, &MalformedCoordinateError{Text: text, Reason: err.Error()}
	}
	return c, nil
}

// MustParse is like Parse but panics if text is malformed.
func MustParse(text string) Coordinate {
	c, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate returns nil if all three fields are non-empty and free of Separator,
// so that the canonical form parses back to the same triple.
func (c Coordinate) Validate() error {
	if err := c.fieldErrors(); err != nil {
		return &MalformedCoordinateError{Text: c.String(), Reason: err.Error()}
	}
	return nil
}

func (c Coordinate) fieldErrors() error {
	var errs []error
	if err := c.Organization.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Name.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Revision.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// String returns the canonical "organization:name:revision" form.
func (c Coordinate) String() string {
	return string(c.Organization) + Separator + string(c.Name) + Separator + string(c.Revision)
}

// IsZero reports whether c is the zero Coordinate.
func (c Coordinate) IsZero() bool {
	return c == Coordinate{}
}

// Compare orders coordinates by their canonical string form.
// It returns -1, 0 or +1 and is suitable for slices.SortFunc.
func Compare(a, b Coordinate) int {
	return strings.Compare(a.String(), b.String())
}

// Strings returns the canonical forms of cs, preserving order.
func Strings(cs []Coordinate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}
