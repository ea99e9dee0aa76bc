// SPDX-License-Identifier: MPL-2.0

package ivymod

import (
	"slices"

	"github.com/alfine/alfine/pkg/coord"
)

// Blueprint builds Modules in-process, for modules that are produced by the
// local build rather than fetched. Methods return the receiver for chaining;
// validation happens in Build.
type Blueprint struct {
	md           Metadata
	noArtifacts  bool
	hasArtifacts bool
}

// NewBlueprint starts a blueprint for the given coordinate.
func NewBlueprint(id coord.Coordinate) *Blueprint {
	return &Blueprint{md: Metadata{ID: id, Source: "blueprint"}}
}

// BlueprintFrom starts a blueprint pre-populated with m's definition.
func BlueprintFrom(m *Module) *Blueprint {
	b := &Blueprint{md: m.Metadata()}
	if b.md.Publications != nil {
		b.noArtifacts = len(b.md.Publications) == 0
		b.hasArtifacts = !b.noArtifacts
	}
	return b
}

// ID replaces the blueprint coordinate.
func (b *Blueprint) ID(id coord.Coordinate) *Blueprint {
	b.md.ID = id
	return b
}

// Source sets the origin label recorded on the built module.
func (b *Blueprint) Source(source string) *Blueprint {
	b.md.Source = source
	return b
}

// Conf declares a configuration.
func (b *Blueprint) Conf(c Configuration) *Blueprint {
	c.Extends = slices.Clone(c.Extends)
	b.md.Configurations = append(b.md.Configurations, c)
	return b
}

// PublicConf declares a public, transitive configuration.
func (b *Blueprint) PublicConf(name string, extends ...string) *Blueprint {
	return b.Conf(Configuration{
		Name:       name,
		Visibility: VisibilityPublic,
		Extends:    extends,
		Transitive: true,
	})
}

// Dep declares a dependency on target with the given mapping expression.
// An empty mapping uses the default mapping.
func (b *Blueprint) Dep(target coord.Coordinate, mapping string) *Blueprint {
	b.md.Dependencies = append(b.md.Dependencies, Dependency{Target: target, Mapping: mapping})
	return b
}

// ForcedDep is like Dep but marks the dependency as forced.
func (b *Blueprint) ForcedDep(target coord.Coordinate, mapping string) *Blueprint {
	b.md.Dependencies = append(b.md.Dependencies, Dependency{Target: target, Mapping: mapping, Force: true})
	return b
}

// DefaultMapping sets the mapping used by dependencies declared without one.
func (b *Blueprint) DefaultMapping(expr string) *Blueprint {
	b.md.DefaultMapping = expr
	return b
}

// Artifact declares a published artifact.
func (b *Blueprint) Artifact(a Artifact) *Blueprint {
	a.Confs = slices.Clone(a.Confs)
	b.md.Publications = append(b.md.Publications, a)
	b.hasArtifacts = true
	b.noArtifacts = false
	return b
}

// NoArtifacts declares an empty publications block, which suppresses the
// default artifact named after the module.
func (b *Blueprint) NoArtifacts() *Blueprint {
	b.md.Publications = nil
	b.hasArtifacts = false
	b.noArtifacts = true
	return b
}

// Metadata returns the metadata the blueprint would build.
func (b *Blueprint) Metadata() Metadata {
	md := b.md
	md.Configurations = slices.Clone(b.md.Configurations)
	md.Dependencies = slices.Clone(b.md.Dependencies)
	switch {
	case b.noArtifacts:
		md.Publications = []Artifact{}
	case b.hasArtifacts:
		md.Publications = slices.Clone(b.md.Publications)
	default:
		md.Publications = nil
	}
	return md
}

// Build validates the blueprint and returns the Module.
func (b *Blueprint) Build() (*Module, error) {
	return NewModule(b.Metadata())
}

// MustBuild is like Build but panics on error. Intended for tests and
// statically declared modules.
func (b *Blueprint) MustBuild() *Module {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
