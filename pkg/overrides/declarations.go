// SPDX-License-Identifier: MPL-2.0

package overrides

import (
	_ "embed"
	"fmt"

	"github.com/alfine/alfine/pkg/coord"
	"github.com/alfine/alfine/pkg/cueutil"
	"github.com/alfine/alfine/pkg/ivymod"
)

//go:embed overrides_schema.cue
var overridesSchema []byte

type (
	// File is the decoded form of an overrides CUE file.
	File struct {
		Modules []Declaration `json:"modules"`
	}

	// Declaration describes one locally defined module.
	Declaration struct {
		ID             string              `json:"id"`
		Configurations []ConfigurationDecl `json:"configurations,omitempty"`
		DefaultMapping string              `json:"default_mapping,omitempty"`
		Dependencies   []DependencyDecl    `json:"dependencies,omitempty"`
		Artifacts      []ArtifactDecl      `json:"artifacts,omitempty"`
		NoArtifacts    bool                `json:"no_artifacts"`
		Install        bool                `json:"install"`
	}

	// ConfigurationDecl declares a configuration of a Declaration.
	ConfigurationDecl struct {
		Name        string   `json:"name"`
		Visibility  string   `json:"visibility"`
		Extends     []string `json:"extends,omitempty"`
		Transitive  bool     `json:"transitive"`
		Deprecated  string   `json:"deprecated,omitempty"`
		Description string   `json:"description,omitempty"`
	}

	// DependencyDecl declares a dependency edge of a Declaration.
	DependencyDecl struct {
		Target  string `json:"target"`
		Mapping string `json:"mapping,omitempty"`
		Force   bool   `json:"force"`
	}

	// ArtifactDecl declares a published artifact of a Declaration.
	ArtifactDecl struct {
		Name  string   `json:"name,omitempty"`
		Type  string   `json:"type"`
		Ext   string   `json:"ext,omitempty"`
		Confs []string `json:"confs,omitempty"`
	}

	// Loaded is a module built from a Declaration.
	Loaded struct {
		Module  *ivymod.Module
		Install bool
	}
)

// Parse decodes overrides CUE data. filename labels errors.
func Parse(data []byte, filename string) (*File, error) {
	res, err := cueutil.ParseAndDecode[File](overridesSchema, data, "#Overrides", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// LoadFile decodes the overrides file at path and builds its modules.
func LoadFile(path string) ([]Loaded, error) {
	res, err := cueutil.DecodeFile[File](overridesSchema, path, "#Overrides")
	if err != nil {
		return nil, err
	}
	return res.Value.Build(path)
}

// Build turns every declaration into a Module. source labels the modules.
// Declaring the same coordinate twice is an error.
func (f *File) Build(source string) ([]Loaded, error) {
	seen := make(map[coord.Coordinate]bool, len(f.Modules))
	out := make([]Loaded, 0, len(f.Modules))
	for i, d := range f.Modules {
		m, err := d.Module(source)
		if err != nil {
			return nil, fmt.Errorf("%s: modules[%d]: %w", source, i, err)
		}
		if seen[m.ID()] {
			return nil, fmt.Errorf("%s: modules[%d]: %s declared twice", source, i, m.ID())
		}
		seen[m.ID()] = true
		out = append(out, Loaded{Module: m, Install: d.Install})
	}
	return out, nil
}

// Module builds the declared module through an ivymod.Blueprint.
func (d Declaration) Module(source string) (*ivymod.Module, error) {
	id, err := coord.Parse(d.ID)
	if err != nil {
		return nil, err
	}

	bp := ivymod.NewBlueprint(id).Source(source).DefaultMapping(d.DefaultMapping)
	for _, c := range d.Configurations {
		bp.Conf(ivymod.Configuration{
			Name:        c.Name,
			Visibility:  ivymod.Visibility(c.Visibility),
			Extends:     c.Extends,
			Transitive:  c.Transitive,
			Deprecated:  c.Deprecated,
			Description: c.Description,
		})
	}
	for _, dep := range d.Dependencies {
		target, err := coord.Parse(dep.Target)
		if err != nil {
			return nil, fmt.Errorf("dependency: %w", err)
		}
		if dep.Force {
			bp.ForcedDep(target, dep.Mapping)
		} else {
			bp.Dep(target, dep.Mapping)
		}
	}
	for _, a := range d.Artifacts {
		bp.Artifact(ivymod.Artifact{Name: a.Name, Type: a.Type, Ext: a.Ext, Confs: a.Confs})
	}
	if d.NoArtifacts {
		if len(d.Artifacts) > 0 {
			return nil, fmt.Errorf("%s: no_artifacts conflicts with declared artifacts", id)
		}
		bp.NoArtifacts()
	}
	return bp.Build()
}

// Apply adds every loaded module to store, installing those marked for
// installation.
func Apply(store *Store, loaded []Loaded) error {
	for _, l := range loaded {
		if l.Install {
			if err := store.Install(l.Module); err != nil {
				return fmt.Errorf("failed to install override %s: %w", l.Module.ID(), err)
			}
			continue
		}
		store.Put(l.Module)
	}
	return nil
}
