// SPDX-License-Identifier: MPL-2.0

package ivycache

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/alfine/alfine/pkg/coord"
)

// stubOracleScript mimics the Ivy command line: it writes a descriptor for
// -dependency queries and a one-line classpath file for -cachepath queries.
const stubOracleScript = `#!/bin/sh
cache=""; org=""; name=""; rev=""; cp=""; types=""; confs=""
while [ $# -gt 0 ]; do
  case "$1" in
    -cache) cache="$2"; shift 2 ;;
    -dependency) org="$2"; name="$3"; rev="$4"; shift 4 ;;
    -cachepath) cp="$2"; shift 2 ;;
    -types)
      shift
      while [ $# -gt 0 ] && [ "${1#-}" = "$1" ]; do types="${types:+$types }$1"; shift; done ;;
    -confs) shift; confs="$*"; break ;;
    *) shift ;;
  esac
done
if [ "$name" = "broken" ]; then echo "unresolved dependency: $org#$name;$rev" >&2; exit 3; fi
if [ "$name" = "slow" ]; then exec sleep 5; fi
if [ -n "$cp" ]; then
  printf '%s\n' "/jars/$name-$rev.jar types=$types confs=$confs" > "$cp"
  exit 0
fi
if [ "$name" = "silent" ]; then exit 0; fi
mkdir -p "$cache/$org/$name"
printf '<ivy-module version="2.0"><info organisation="%s" module="%s" revision="%s"/></ivy-module>\n' "$org" "$name" "$rev" > "$cache/$org/$name/ivy-$rev.xml"
`

func newStubOracle(t *testing.T, opts ...ExecOption) *ExecOracle {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("stub oracle is a POSIX shell script")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "oracle.sh")
	if err := os.WriteFile(script, []byte(stubOracleScript), 0o755); err != nil {
		t.Fatal(err)
	}
	o, err := NewExecOracle("sh '"+script+"'", filepath.Join(dir, "cache"), opts...)
	if err != nil {
		t.Fatalf("NewExecOracle() error: %v", err)
	}
	return o
}

func TestNewExecOracle(t *testing.T) {
	t.Setenv("ALFINE_TEST_IVY_JAR", "/opt/ivy/ivy.jar")

	tests := []struct {
		name     string
		command  string
		cacheDir string
		want     []string
		wantErr  bool
	}{
		{
			name:     "split like a shell",
			command:  `java -jar "$ALFINE_TEST_IVY_JAR" -settings 'my settings.xml'`,
			cacheDir: "cache",
			want:     []string{"java", "-jar", "/opt/ivy/ivy.jar", "-settings", "my settings.xml"},
		},
		{name: "empty command", command: "  ", cacheDir: "cache", wantErr: true},
		{name: "unbalanced quote", command: `java "-jar`, cacheDir: "cache", wantErr: true},
		{name: "empty cache dir", command: "ivy", cacheDir: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewExecOracle(tt.command, tt.cacheDir)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewExecOracle(%q) expected error", tt.command)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewExecOracle(%q) error: %v", tt.command, err)
			}
			if got := o.Command(); strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Command() = %q, want %q", got, tt.want)
			}
			if o.CacheDir() != tt.cacheDir {
				t.Errorf("CacheDir() = %q, want %q", o.CacheDir(), tt.cacheDir)
			}
		})
	}
}

func TestExecOracle_FetchMetadata(t *testing.T) {
	t.Parallel()

	o := newStubOracle(t)
	ctx := context.Background()
	id := coord.MustParse("org.example:lib:2.0")

	path, err := o.FetchMetadata(ctx, id)
	if err != nil {
		t.Fatalf("FetchMetadata() error: %v", err)
	}
	if want := MetadataPath(o.CacheDir(), id); path != want {
		t.Errorf("FetchMetadata() = %q, want %q", path, want)
	}

	c := New(WithOracle(o))
	m, err := c.Resolve(ctx, id)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if m.ID() != id {
		t.Errorf("Resolve() = %s, want %s", m.ID(), id)
	}
}

func TestExecOracle_Failures(t *testing.T) {
	t.Parallel()

	o := newStubOracle(t, WithTimeout(200*time.Millisecond))
	ctx := context.Background()

	t.Run("non-zero exit", func(t *testing.T) {
		t.Parallel()

		_, err := o.FetchMetadata(ctx, coord.MustParse("o:broken:1"))
		var oerr *OracleError
		if !errors.As(err, &oerr) {
			t.Fatalf("FetchMetadata() error = %v, want *OracleError", err)
		}
		if !strings.Contains(oerr.Output, "unresolved dependency") {
			t.Errorf("Output = %q, want the oracle's stderr", oerr.Output)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
			t.Errorf("error chain = %v, want exit status 3", err)
		}
	})

	t.Run("descriptor not produced", func(t *testing.T) {
		t.Parallel()

		_, err := o.FetchMetadata(ctx, coord.MustParse("o:silent:1"))
		if !errors.Is(err, ErrOracleResolutionFailure) {
			t.Fatalf("FetchMetadata() error = %v, want ErrOracleResolutionFailure", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		_, err := o.FetchMetadata(ctx, coord.MustParse("o:slow:1"))
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("FetchMetadata() error = %v, want context.DeadlineExceeded", err)
		}
	})
}

func TestExecOracle_Materialize(t *testing.T) {
	t.Parallel()

	o := newStubOracle(t, WithTypes("jar"))
	id := coord.MustParse("org.example:app:1.0")

	raw, err := o.Materialize(context.Background(), id, []string{"compile", "runtime"})
	if err != nil {
		t.Fatalf("Materialize() error: %v", err)
	}
	if want := "/jars/app-1.0.jar types=jar confs=compile runtime\n"; raw != want {
		t.Errorf("Materialize() = %q, want %q", raw, want)
	}
}
