// SPDX-License-Identifier: MPL-2.0

package ivymod

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/alfine/alfine/pkg/coord"
)

const (
	// DefaultConfiguration is the name of the configuration synthesized for
	// modules that declare none.
	DefaultConfiguration = "default"

	// VisibilityPublic configurations may be pulled in by dependent modules.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate configurations are only usable inside their own module.
	VisibilityPrivate Visibility = "private"
)

// ErrInvalidVisibility is returned when a Visibility value is not recognized.
var ErrInvalidVisibility = errors.New("invalid visibility")

type (
	// Visibility controls whether dependents can map onto a configuration.
	Visibility string

	// Configuration describes one named configuration a module publishes.
	Configuration struct {
		Name        string
		Visibility  Visibility
		Extends     []string
		Transitive  bool
		Deprecated  string
		Description string
	}

	// ConfigurationSet is the ordered set of configurations declared by a module.
	// The zero value is not usable; build one with NewConfigurationSet.
	ConfigurationSet struct {
		order  []string
		byName map[string]Configuration
		owner  coord.Coordinate
	}
)

// Validate returns nil if v is public or private.
func (v Visibility) Validate() error {
	switch v {
	case VisibilityPublic, VisibilityPrivate:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidVisibility, string(v))
	}
}

// String returns the string representation of the Visibility.
func (v Visibility) String() string { return string(v) }

// IsPublic reports whether the configuration may be used by dependents.
func (c Configuration) IsPublic() bool {
	return c.Visibility != VisibilityPrivate
}

// IsDeprecated reports whether the configuration carries a deprecation notice.
func (c Configuration) IsDeprecated() bool {
	return c.Deprecated != ""
}

func (c Configuration) equal(o Configuration) bool {
	return c.Name == o.Name &&
		c.Visibility == o.Visibility &&
		slices.Equal(c.Extends, o.Extends) &&
		c.Transitive == o.Transitive &&
		c.Deprecated == o.Deprecated &&
		c.Description == o.Description
}

// DefaultConfigurations returns the configuration list assumed for modules
// that declare no configurations block.
func DefaultConfigurations() []Configuration {
	return []Configuration{{
		Name:       DefaultConfiguration,
		Visibility: VisibilityPublic,
		Transitive: true,
	}}
}

// NewConfigurationSet builds a set from declared configurations, preserving
// declaration order. An empty declaration list yields the synthetic default set.
//
// Names must be unique and non-empty, visibility must be valid (empty means public),
// and every extends entry must name a configuration of the same set. Extends cycles
// are not rejected here; they surface from Effective.
func NewConfigurationSet(confs ...Configuration) (*ConfigurationSet, error) {
	return newConfigurationSet(coord.Coordinate{}, confs)
}

func newConfigurationSet(owner coord.Coordinate, confs []Configuration) (*ConfigurationSet, error) {
	if len(confs) == 0 {
		confs = DefaultConfigurations()
	}

	s := &ConfigurationSet{
		order:  make([]string, 0, len(confs)),
		byName: make(map[string]Configuration, len(confs)),
		owner:  owner,
	}

	for _, c := range confs {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, malformed(owner, "configuration with empty name")
		}
		if _, dup := s.byName[c.Name]; dup {
			return nil, malformed(owner, "configuration %q declared twice", c.Name)
		}
		if c.Visibility == "" {
			c.Visibility = VisibilityPublic
		}
		if err := c.Visibility.Validate(); err != nil {
			return nil, malformed(owner, "configuration %q: %v", c.Name, err)
		}
		c.Extends = slices.Clone(c.Extends)
		s.order = append(s.order, c.Name)
		s.byName[c.Name] = c
	}

	for _, name := range s.order {
		for _, parent := range s.byName[name].Extends {
			if _, ok := s.byName[parent]; !ok {
				return nil, malformed(owner, "configuration %q extends undeclared configuration %q", name, parent)
			}
		}
	}

	return s, nil
}

// withOwner returns a copy of s attributed to the given module.
func (s *ConfigurationSet) withOwner(owner coord.Coordinate) *ConfigurationSet {
	cp := *s
	cp.owner = owner
	return &cp
}

// Names returns configuration names in declaration order.
func (s *ConfigurationSet) Names() []string {
	return slices.Clone(s.order)
}

// Len returns the number of declared configurations.
func (s *ConfigurationSet) Len() int { return len(s.order) }

// Get returns the named configuration.
func (s *ConfigurationSet) Get(name string) (Configuration, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// Has reports whether name is declared.
func (s *ConfigurationSet) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// All returns the configurations in declaration order.
func (s *ConfigurationSet) All() []Configuration {
	out := make([]Configuration, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// Public returns the names of public configurations in declaration order.
func (s *ConfigurationSet) Public() []string {
	var out []string
	for _, name := range s.order {
		if s.byName[name].IsPublic() {
			out = append(out, name)
		}
	}
	return out
}

// Effective returns the named configuration followed by every ancestor reachable
// through extends, each once, in depth-first declaration order.
//
// It fails with UnknownConfigurationError when name is not declared and with
// MalformedModuleError when the extends relation contains a cycle.
func (s *ConfigurationSet) Effective(name string) ([]Configuration, error) {
	if _, ok := s.byName[name]; !ok {
		return nil, &UnknownConfigurationError{Module: s.owner, Name: name}
	}

	var (
		out     []Configuration
		done    = make(map[string]bool)
		onPath  = make(map[string]bool)
		path    []string
		descend func(string) error
	)
	descend = func(n string) error {
		if onPath[n] {
			cycle := append(slices.Clone(path[slices.Index(path, n):]), n)
			return malformed(s.owner, "configuration extends cycle: %s", strings.Join(cycle, " -> "))
		}
		if done[n] {
			return nil
		}
		onPath[n] = true
		path = append(path, n)
		c := s.byName[n]
		out = append(out, c)
		done[n] = true
		for _, parent := range c.Extends {
			if err := descend(parent); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		delete(onPath, n)
		return nil
	}

	if err := descend(name); err != nil {
		return nil, err
	}
	return out, nil
}

// EffectiveNames is like Effective but returns only names.
func (s *ConfigurationSet) EffectiveNames(name string) ([]string, error) {
	confs, err := s.Effective(name)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(confs))
	for i, c := range confs {
		names[i] = c.Name
	}
	return names, nil
}

// Expand returns the union of the effective names of every requested
// configuration, each once, in first-seen order.
func (s *ConfigurationSet) Expand(names ...string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, name := range names {
		eff, err := s.EffectiveNames(name)
		if err != nil {
			return nil, err
		}
		for _, n := range eff {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out, nil
}

// Validate checks every configuration for extends cycles.
func (s *ConfigurationSet) Validate() error {
	for _, name := range s.order {
		if _, err := s.Effective(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *ConfigurationSet) equal(o *ConfigurationSet) bool {
	if !slices.Equal(s.order, o.order) {
		return false
	}
	for _, name := range s.order {
		if !s.byName[name].equal(o.byName[name]) {
			return false
		}
	}
	return true
}
