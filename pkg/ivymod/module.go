// SPDX-License-Identifier: MPL-2.0

package ivymod

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/alfine/alfine/pkg/coord"
)

// DefaultArtifactType is used for artifacts that declare neither ext nor type.
const DefaultArtifactType = "jar"

type (
	// Dependency is a declared edge to another module, annotated with the
	// configuration-mapping expression that selects what it pulls in.
	Dependency struct {
		Target coord.Coordinate
		// Mapping is the expression as declared. Empty means the module's default
		// mapping, or DefaultMapping when the module has none.
		Mapping string
		// Force mirrors the descriptor's force attribute. Revisions are always
		// exact, so it only round-trips through descriptors.
		Force bool
	}

	// Artifact is one published file of a module.
	Artifact struct {
		Name  string
		Type  string
		Ext   string
		Confs []string
	}

	// Metadata is the raw description of a module as obtained from a descriptor,
	// an override declaration, or a Blueprint.
	Metadata struct {
		ID             coord.Coordinate
		Configurations []Configuration
		Dependencies   []Dependency
		// DefaultMapping applies to dependencies declared without a mapping.
		DefaultMapping string
		// Publications lists declared artifacts. A nil slice means the module
		// declares no publications block; see Module.Artifacts.
		Publications []Artifact
		// Source records where the metadata came from (a path or a label).
		Source string
	}

	// Module is an immutable, validated module: a coordinate with its
	// configurations and outgoing dependency edges.
	//
	// The only mutable state is the registration claim, recorded once by the
	// cache that owns the module.
	Module struct {
		id             coord.Coordinate
		confs          *ConfigurationSet
		deps           []Dependency
		exprs          []MappingExpr
		defaultMapping string
		publications   []Artifact
		source         string

		mu    sync.Mutex
		owner any
	}

	// ActiveDependency is a dependency selected by a configuration request,
	// together with the target configurations it pulls in.
	ActiveDependency struct {
		Dependency
		Targets []TargetConf
	}
)

// Extension returns the declared ext, falling back to the type and then to
// DefaultArtifactType.
func (a Artifact) Extension() string {
	switch {
	case a.Ext != "":
		return a.Ext
	case a.Type != "":
		return a.Type
	default:
		return DefaultArtifactType
	}
}

func (a Artifact) equal(o Artifact) bool {
	return a.Name == o.Name && a.Type == o.Type && a.Ext == o.Ext && slices.Equal(a.Confs, o.Confs)
}

// NewModule validates md and builds a Module from it.
func NewModule(md Metadata) (*Module, error) {
	if err := md.ID.Validate(); err != nil {
		return nil, &MalformedModuleError{Source: md.Source, Reason: err.Error()}
	}

	withSource := func(err error) error {
		if mErr, ok := err.(*MalformedModuleError); ok {
			mErr.Source = md.Source
		}
		return err
	}

	confs, err := newConfigurationSet(md.ID, md.Configurations)
	if err != nil {
		return nil, withSource(err)
	}

	defaultMapping := strings.TrimSpace(md.DefaultMapping)
	if defaultMapping != "" {
		if _, err := ParseMapping(defaultMapping); err != nil {
			return nil, withSource(malformed(md.ID, "default mapping: %v", err))
		}
	}

	m := &Module{
		id:             md.ID,
		confs:          confs,
		deps:           make([]Dependency, 0, len(md.Dependencies)),
		exprs:          make([]MappingExpr, 0, len(md.Dependencies)),
		defaultMapping: defaultMapping,
		source:         md.Source,
	}

	for _, dep := range md.Dependencies {
		if err := dep.Target.Validate(); err != nil {
			return nil, withSource(malformed(md.ID, "dependency: %v", err))
		}
		dep.Mapping = strings.TrimSpace(dep.Mapping)
		expr, err := ParseMapping(m.mappingFor(dep))
		if err != nil {
			return nil, withSource(malformed(md.ID, "dependency %s: %v", dep.Target, err))
		}
		m.deps = append(m.deps, dep)
		m.exprs = append(m.exprs, expr)
	}

	if md.Publications != nil {
		m.publications = make([]Artifact, 0, len(md.Publications))
		for _, a := range md.Publications {
			if strings.TrimSpace(a.Name) == "" {
				a.Name = string(md.ID.Name)
			}
			a.Confs = slices.Clone(a.Confs)
			m.publications = append(m.publications, a)
		}
	}

	return m, nil
}

func (m *Module) mappingFor(dep Dependency) string {
	switch {
	case dep.Mapping != "":
		return dep.Mapping
	case m.defaultMapping != "":
		return m.defaultMapping
	default:
		return DefaultMapping
	}
}

// ID returns the module coordinate.
func (m *Module) ID() coord.Coordinate { return m.id }

// String returns the canonical coordinate form.
func (m *Module) String() string { return m.id.String() }

// Source returns the origin the module was built from, if recorded.
func (m *Module) Source() string { return m.source }

// Configurations returns the module's configuration set.
func (m *Module) Configurations() *ConfigurationSet { return m.confs }

// DefaultMapping returns the declared default mapping, if any.
func (m *Module) DefaultMapping() string { return m.defaultMapping }

// Dependencies returns the declared dependency edges in declaration order.
func (m *Module) Dependencies() []Dependency {
	return slices.Clone(m.deps)
}

// DependencyTargets returns the coordinates of the declared dependencies, in
// declaration order, each once.
func (m *Module) DependencyTargets() []coord.Coordinate {
	out := make([]coord.Coordinate, 0, len(m.deps))
	for _, d := range m.deps {
		if !slices.Contains(out, d.Target) {
			out = append(out, d.Target)
		}
	}
	return out
}

// MappingOf returns the parsed mapping expression of the i-th dependency.
func (m *Module) MappingOf(i int) MappingExpr { return m.exprs[i] }

// Effective returns the effective configurations of name.
func (m *Module) Effective(name string) ([]Configuration, error) {
	return m.confs.Effective(name)
}

// HasPublications reports whether the module declared a publications block.
func (m *Module) HasPublications() bool { return m.publications != nil }

// Artifacts returns the module's published artifacts. A module without a
// publications block publishes a single jar named after the module; a declared
// but empty block publishes nothing.
func (m *Module) Artifacts() []Artifact {
	if m.publications == nil {
		return []Artifact{{Name: string(m.id.Name), Type: DefaultArtifactType, Ext: DefaultArtifactType}}
	}
	return slices.Clone(m.publications)
}

// ArtifactFileNames returns the file names of the published artifacts as they
// appear in an artifact cache ("<name>-<rev>.<ext>").
func (m *Module) ArtifactFileNames() []string {
	arts := m.Artifacts()
	out := make([]string, len(arts))
	for i, a := range arts {
		out[i] = a.Name + "-" + string(m.id.Revision) + "." + a.Extension()
	}
	return out
}

// DependenciesFor evaluates every dependency's mapping against the requested
// configurations, expanded through extends, and returns the edges that are
// active together with the target configurations they pull in.
func (m *Module) DependenciesFor(confs ...string) ([]ActiveDependency, error) {
	if len(confs) == 0 {
		return nil, fmt.Errorf("%s: no configurations requested", m.id)
	}
	expanded, err := m.confs.Expand(confs...)
	if err != nil {
		return nil, err
	}

	var out []ActiveDependency
	for i, dep := range m.deps {
		var targets []TargetConf
		for _, c := range expanded {
			for _, t := range m.exprs[i].TargetsFor(c) {
				if !slices.Contains(targets, t) {
					targets = append(targets, t)
				}
			}
		}
		if len(targets) > 0 {
			out = append(out, ActiveDependency{Dependency: dep, Targets: targets})
		}
	}
	return out, nil
}

// Metadata returns the raw metadata the module was built from.
func (m *Module) Metadata() Metadata {
	md := Metadata{
		ID:             m.id,
		Configurations: m.confs.All(),
		Dependencies:   slices.Clone(m.deps),
		DefaultMapping: m.defaultMapping,
		Source:         m.source,
	}
	if m.publications != nil {
		md.Publications = slices.Clone(m.publications)
	}
	return md
}

// Equal reports whether m and o describe the same module definition.
// The recorded source and registration claim are ignored.
func (m *Module) Equal(o *Module) bool {
	if m == o {
		return true
	}
	if m == nil || o == nil {
		return false
	}
	return m.id == o.id &&
		m.defaultMapping == o.defaultMapping &&
		m.confs.equal(o.confs) &&
		slices.Equal(m.deps, o.deps) &&
		(m.publications == nil) == (o.publications == nil) &&
		slices.EqualFunc(m.publications, o.publications, Artifact.equal)
}

// Claim records owner as the registry holding the module. Claiming again with
// the same owner is a no-op; a different owner gets ErrAlreadyRegistered.
func (m *Module) Claim(owner any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.owner {
	case nil:
		m.owner = owner
		return nil
	case owner:
		return nil
	default:
		return fmt.Errorf("%s: %w", m.id, ErrAlreadyRegistered)
	}
}

// Registered reports whether the module has been claimed.
func (m *Module) Registered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner != nil
}
