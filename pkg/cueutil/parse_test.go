// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cuelang.org/go/cue"
)

const testSchema = `
#Module: {
	id:    string & =~"^[^:]+:[^:]+:[^:]+$"
	confs: [...string] | *[]
	deps?: [...{
		target:   string
		mapping?: string
	}]
}
`

type testModule struct {
	ID    string   `json:"id"`
	Confs []string `json:"confs"`
	Deps  []struct {
		Target  string `json:"target"`
		Mapping string `json:"mapping,omitempty"`
	} `json:"deps,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
id: "dacapo:batik:1.0"
confs: ["compile", "runtime"]
deps: [{target: "org.apache.xmlgraphics:batik-all:1.16", mapping: "runtime->default"}]
`)
		res, err := ParseAndDecode[testModule]([]byte(testSchema), data, "#Module")
		if err != nil {
			t.Fatalf("ParseAndDecode() error: %v", err)
		}
		if res.Value.ID != "dacapo:batik:1.0" || len(res.Value.Confs) != 2 || len(res.Value.Deps) != 1 {
			t.Errorf("decoded = %+v", res.Value)
		}
		if res.Value.Deps[0].Mapping != "runtime->default" {
			t.Errorf("mapping = %q", res.Value.Deps[0].Mapping)
		}
	})

	t.Run("schema defaults apply", func(t *testing.T) {
		t.Parallel()

		res, err := ParseAndDecode[testModule]([]byte(testSchema), []byte(`id: "a:b:c"`), "#Module")
		if err != nil {
			t.Fatalf("ParseAndDecode() error: %v", err)
		}
		if len(res.Value.Confs) != 0 {
			t.Errorf("Confs = %#v, want empty default", res.Value.Confs)
		}
		if !res.Unified.LookupPath(cuePath("id")).Exists() {
			t.Error("Unified value should expose id")
		}
	})

	t.Run("constraint violation names file and field", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testModule]([]byte(testSchema), []byte(`id: "not-a-coordinate"`), "#Module",
			WithFilename("overrides.cue"))
		if !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("ParseAndDecode() error = %v, want ErrInvalidDocument", err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.FilePath != "overrides.cue" {
			t.Fatalf("expected *ValidationError for overrides.cue, got %v", err)
		}
		if !strings.Contains(err.Error(), "id") {
			t.Errorf("error %q should name the id field", err)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testModule]([]byte(testSchema), []byte(`id: "a:b:c`), "#Module")
		if err == nil {
			t.Fatal("expected syntax error")
		}
		if !strings.Contains(err.Error(), "<input>") {
			t.Errorf("error %q should use the default filename", err)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseAndDecode[testModule]([]byte(testSchema), []byte(`confs: []`), "#Module"); err == nil {
			t.Fatal("expected error for missing id")
		}
	})

	t.Run("defaults fill an empty document", func(t *testing.T) {
		t.Parallel()

		schema := []byte(`#Cfg: { level: "debug" | "info" | *"info" }`)
		res, err := ParseAndDecode[struct {
			Level string `json:"level"`
		}](schema, []byte(``), "#Cfg", WithConcrete(false))
		if err != nil {
			t.Fatalf("ParseAndDecode() error: %v", err)
		}
		if res.Value.Level != "info" {
			t.Errorf("level = %q, want default info", res.Value.Level)
		}
	})

	t.Run("unknown schema definition", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testModule]([]byte(testSchema), []byte(`id: "a:b:c"`), "#Missing")
		if err == nil || !strings.Contains(err.Error(), "#Missing") {
			t.Errorf("ParseAndDecode() error = %v, want missing definition error", err)
		}
	})

	t.Run("size limit", func(t *testing.T) {
		t.Parallel()

		data := []byte(`id: "a:b:c"`)
		if _, err := ParseAndDecode[testModule]([]byte(testSchema), data, "#Module", WithMaxFileSize(4)); err == nil {
			t.Error("expected size limit error")
		}
	})
}

func TestDecodeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "module.cue")
	if err := os.WriteFile(path, []byte(`id: "a:b:c"`+"\n"+`confs: ["default"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := DecodeFile[testModule]([]byte(testSchema), path, "#Module")
	if err != nil {
		t.Fatalf("DecodeFile() error: %v", err)
	}
	if res.Value.ID != "a:b:c" {
		t.Errorf("ID = %q", res.Value.ID)
	}

	if _, err := DecodeFile[testModule]([]byte(testSchema), filepath.Join(dir, "missing.cue"), "#Module"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("DecodeFile(missing) error = %v, want os.ErrNotExist", err)
	}

	if _, err := DecodeFile[testModule]([]byte(testSchema), path, "#Module", WithMaxFileSize(3)); err == nil {
		t.Error("DecodeFile() should enforce the size limit before reading")
	}

	bad := filepath.Join(dir, "bad.cue")
	if err := os.WriteFile(bad, []byte(`id: 1`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = DecodeFile[testModule]([]byte(testSchema), bad, "#Module")
	if err == nil || !strings.Contains(err.Error(), bad) {
		t.Errorf("DecodeFile(bad) error = %v, want error naming %s", err, bad)
	}
}

func cuePath(s string) cue.Path { return cue.ParsePath(s) }
