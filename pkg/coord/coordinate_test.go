// SPDX-License-Identifier: MPL-2.0

package coord

import (
	"errors"
	"slices"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		want    Coordinate
		wantErr bool
	}{
		{
			name: "valid",
			text: "org.apache.xmlgraphics:batik-all:1.16",
			want: Coordinate{Organization: "org.apache.xmlgraphics", Name: "batik-all", Revision: "1.16"},
		},
		{name: "too few parts", text: "dacapo:batik", wantErr: true},
		{name: "too many parts", text: "a:b:c:d", wantErr: true},
		{name: "empty organization", text: ":batik:1.0", wantErr: true},
		{name: "empty name", text: "dacapo::1.0", wantErr: true},
		{name: "empty revision", text: "dacapo:batik:", wantErr: true},
		{name: "blank revision", text: "dacapo:batik: ", wantErr: true},
		{name: "empty text", text: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %v, want error", tt.text, got)
				}
				if !errors.Is(err, ErrMalformedCoordinate) {
					t.Errorf("Parse(%q) error = %v, want ErrMalformedCoordinate", tt.text, err)
				}
				var mErr *MalformedCoordinateError
				if !errors.As(err, &mErr) || mErr.Text != tt.text {
					t.Errorf("expected *MalformedCoordinateError carrying %q, got %v", tt.text, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCoordinateStringRoundTrip(t *testing.T) {
	t.Parallel()

	c := MustNew("dacapo", "batik", "1.0")
	if got := c.String(); got != "dacapo:batik:1.0" {
		t.Fatalf("String() = %q", got)
	}
	back, err := Parse(c.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if back != c {
		t.Errorf("round trip mismatch: %v != %v", back, c)
	}
}

func TestCoordinateAsMapKey(t *testing.T) {
	t.Parallel()

	m := map[Coordinate]int{}
	m[MustParse("a:b:1")]++
	m[MustNew("a", "b", "1")]++
	if len(m) != 1 || m[MustParse("a:b:1")] != 2 {
		t.Errorf("expected equal coordinates to share a key, got %v", m)
	}
}

func TestNewRejectsInvalidFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		org       string
		mod       string
		rev       string
		wantField error
	}{
		{"empty name", "dacapo", "", "1.0", ErrInvalidName},
		{"separator in organization", "a:b", "c", "d", ErrInvalidOrganization},
		{"separator in name", "a", "b:c", "d", ErrInvalidName},
		{"separator in revision", "a", "b", "c:d", ErrInvalidRevision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.org, tt.mod, tt.rev)
			if !errors.Is(err, ErrMalformedCoordinate) {
				t.Fatalf("New(%q, %q, %q) error = %v, want ErrMalformedCoordinate", tt.org, tt.mod, tt.rev, err)
			}
			c := Coordinate{Organization: Organization(tt.org), Name: Name(tt.mod), Revision: Revision(tt.rev)}
			if err := c.fieldErrors(); !errors.Is(err, tt.wantField) {
				t.Errorf("fieldErrors() = %v, want %v", err, tt.wantField)
			}
		})
	}
}

func TestCanonicalFormIsUnambiguous(t *testing.T) {
	t.Parallel()

	a := Coordinate{Organization: "a:b", Name: "c", Revision: "d"}
	b := Coordinate{Organization: "a", Name: "b:c", Revision: "d"}
	if a.String() != b.String() {
		t.Fatalf("expected colliding canonical forms, got %q and %q", a, b)
	}
	if a.Validate() == nil || b.Validate() == nil {
		t.Errorf("coordinates sharing the canonical form %q must not validate", a)
	}
}

func TestCompareAndStrings(t *testing.T) {
	t.Parallel()

	cs := []Coordinate{MustParse("b:x:1"), MustParse("a:y:2"), MustParse("a:x:1")}
	slices.SortFunc(cs, Compare)
	want := []string{"a:x:1", "a:y:2", "b:x:1"}
	if got := Strings(cs); !slices.Equal(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
}

func TestIsZero(t *testing.T) {
	t.Parallel()

	if !(Coordinate{}).IsZero() {
		t.Error("zero coordinate should report IsZero")
	}
	if MustParse("a:b:c").IsZero() {
		t.Error("non-zero coordinate should not report IsZero")
	}
}
