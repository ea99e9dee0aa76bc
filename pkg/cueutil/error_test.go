// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "overrides.cue"); err != nil {
			t.Errorf("FormatError(nil) = %v, want nil", err)
		}
	})

	t.Run("non-CUE error keeps cause", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("boom")
		err := FormatError(cause, "overrides.cue")
		if !errors.Is(err, cause) {
			t.Errorf("FormatError() = %v, want wrapped cause", err)
		}
		if !strings.HasPrefix(err.Error(), "overrides.cue: ") {
			t.Errorf("FormatError() = %q, want file prefix", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{path: nil, want: ""},
		{path: []string{"cache_dir"}, want: "cache_dir"},
		{path: []string{"oracle", "types"}, want: "oracle.types"},
		{path: []string{"modules", "0", "id"}, want: "modules[0].id"},
		{path: []string{"modules", "2", "dependencies", "10", "mapping"}, want: "modules[2].dependencies[10].mapping"},
		{path: []string{"0"}, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.want {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "single field",
			err:  &ValidationError{FilePath: "config.cue", Fields: []FieldError{{Path: "log_level", Message: "conflicting values"}}},
			want: "config.cue: log_level: conflicting values",
		},
		{
			name: "no path",
			err:  &ValidationError{FilePath: "config.cue", Fields: []FieldError{{Message: "syntax error"}}},
			want: "config.cue: syntax error",
		},
		{
			name: "several fields",
			err: &ValidationError{FilePath: "config.cue", Fields: []FieldError{
				{Path: "a", Message: "x"},
				{Path: "b", Message: "y"},
			}},
			want: "config.cue: validation failed:\n  a: x\n  b: y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, ErrInvalidDocument) {
				t.Error("ValidationError should wrap ErrInvalidDocument")
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 10), 10, "f.cue"); err != nil {
		t.Errorf("CheckFileSize(at limit) = %v, want nil", err)
	}
	if err := CheckFileSize(nil, 10, "f.cue"); err != nil {
		t.Errorf("CheckFileSize(empty) = %v, want nil", err)
	}
	err := CheckFileSize(make([]byte, 11), 10, "f.cue")
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("CheckFileSize(over limit) = %v, want size error", err)
	}
}
