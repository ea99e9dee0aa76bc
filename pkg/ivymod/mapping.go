// SPDX-License-Identifier: MPL-2.0

package ivymod

import (
	"fmt"
	"slices"
	"strings"
)

const (
	// AllConfs matches every configuration. As a source it matches any requested
	// configuration; as a target it expands to every public target configuration.
	AllConfs = "*"
	// SameConf as a target maps onto the target configuration with the same
	// name as the source configuration being resolved.
	SameConf = "@"

	// DefaultMapping is used for dependencies that carry no mapping and whose
	// module declares no default mapping.
	DefaultMapping = "*->*"
)

type (
	// TargetConf names one target configuration of a mapping, with an optional
	// fallback used when the target module does not declare Name.
	TargetConf struct {
		Name     string
		Fallback string
	}

	// Mapping is one semicolon-separated alternative of a mapping expression:
	// every configuration in Sources pulls in every configuration in Targets.
	Mapping struct {
		Sources []string
		Targets []TargetConf
	}

	// MappingExpr is a parsed configuration-mapping expression.
	MappingExpr struct {
		raw      string
		mappings []Mapping
	}
)

// String renders the target as "name" or "name(fallback)".
func (t TargetConf) String() string {
	if t.Fallback == "" {
		return t.Name
	}
	return t.Name + "(" + t.Fallback + ")"
}

// String renders the mapping in expression form.
func (m Mapping) String() string {
	targets := make([]string, len(m.Targets))
	for i, t := range m.Targets {
		targets[i] = t.String()
	}
	return strings.Join(m.Sources, ",") + "->" + strings.Join(targets, ",")
}

// ParseMapping parses an expression of the form
//
//	src[,src]* -> target[(fallback)][,target[(fallback)]]* ; ...
//
// An alternative without "->" maps its sources onto configurations of the same name.
// Whitespace around tokens is ignored.
func ParseMapping(expr string) (MappingExpr, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return MappingExpr{}, fmt.Errorf("empty mapping expression")
	}

	alternatives, err := splitTopLevel(trimmed, ';')
	if err != nil {
		return MappingExpr{}, fmt.Errorf("mapping %q: %w", expr, err)
	}

	out := MappingExpr{raw: trimmed}
	for _, alt := range alternatives {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		m, err := parseAlternative(alt)
		if err != nil {
			return MappingExpr{}, fmt.Errorf("mapping %q: %w", expr, err)
		}
		out.mappings = append(out.mappings, m)
	}
	if len(out.mappings) == 0 {
		return MappingExpr{}, fmt.Errorf("mapping %q has no alternatives", expr)
	}
	return out, nil
}

// MustParseMapping is like ParseMapping but panics on error.
func MustParseMapping(expr string) MappingExpr {
	m, err := ParseMapping(expr)
	if err != nil {
		panic(err)
	}
	return m
}

func parseAlternative(alt string) (Mapping, error) {
	srcText, targetText, hasArrow := strings.Cut(alt, "->")

	var m Mapping
	for _, s := range strings.Split(srcText, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			return Mapping{}, fmt.Errorf("empty source configuration in %q", alt)
		}
		m.Sources = append(m.Sources, s)
	}

	if !hasArrow {
		m.Targets = []TargetConf{{Name: SameConf}}
		return m, nil
	}

	targets, err := splitTopLevel(targetText, ',')
	if err != nil {
		return Mapping{}, err
	}
	for _, t := range targets {
		tc, err := parseTarget(strings.TrimSpace(t))
		if err != nil {
			return Mapping{}, fmt.Errorf("%q: %w", alt, err)
		}
		m.Targets = append(m.Targets, tc)
	}
	return m, nil
}

func parseTarget(text string) (TargetConf, error) {
	if text == "" {
		return TargetConf{}, fmt.Errorf("empty target configuration")
	}
	open := strings.IndexByte(text, '(')
	if open < 0 {
		if strings.ContainsRune(text, ')') {
			return TargetConf{}, fmt.Errorf("unbalanced parenthesis in %q", text)
		}
		return TargetConf{Name: text}, nil
	}
	if !strings.HasSuffix(text, ")") {
		return TargetConf{}, fmt.Errorf("unterminated fallback in %q", text)
	}
	name := strings.TrimSpace(text[:open])
	fallback := strings.TrimSpace(text[open+1 : len(text)-1])
	if name == "" || fallback == "" || strings.ContainsAny(fallback, "()") {
		return TargetConf{}, fmt.Errorf("malformed target %q", text)
	}
	return TargetConf{Name: name, Fallback: fallback}, nil
}

// splitTopLevel splits s on sep, ignoring separators inside parentheses.
func splitTopLevel(s string, sep byte) ([]string, error) {
	var (
		parts []string
		depth int
		start int
	)
	for i := range len(s) {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parenthesis at offset %d", i)
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parenthesis")
	}
	return append(parts, s[start:]), nil
}

// String returns the expression as written (trimmed).
func (e MappingExpr) String() string { return e.raw }

// IsZero reports whether e was never parsed.
func (e MappingExpr) IsZero() bool { return len(e.mappings) == 0 }

// Mappings returns the parsed alternatives.
func (e MappingExpr) Mappings() []Mapping {
	return slices.Clone(e.mappings)
}

// Sources returns every source configuration named by the expression, each once.
func (e MappingExpr) Sources() []string {
	var out []string
	for _, m := range e.mappings {
		for _, s := range m.Sources {
			if !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}
	return out
}

// TargetsFor returns the target configurations pulled in when the depending
// module resolves configuration conf. SameConf targets are replaced by conf.
// The result is empty when no alternative lists conf (or "*") as a source.
func (e MappingExpr) TargetsFor(conf string) []TargetConf {
	var out []TargetConf
	for _, m := range e.mappings {
		if !slices.Contains(m.Sources, conf) && !slices.Contains(m.Sources, AllConfs) {
			continue
		}
		for _, t := range m.Targets {
			if t.Name == SameConf {
				t.Name = conf
			}
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	return out
}

// Table resolves the expression against the given source configuration names
// into a lookup from source configuration to its target configurations.
// Sources with no targets are omitted.
func (e MappingExpr) Table(sources []string) map[string][]TargetConf {
	table := make(map[string][]TargetConf)
	for _, s := range sources {
		if targets := e.TargetsFor(s); len(targets) > 0 {
			table[s] = targets
		}
	}
	return table
}

// ResolveTargetConfs maps the given targets onto configurations declared by
// the target module's configuration set, in first-seen order without duplicates.
//
// AllConfs expands to every public configuration. A name the target does not
// declare is replaced by its fallback (itself possibly AllConfs); without a
// usable fallback the result is an UnknownConfigurationError.
func ResolveTargetConfs(targets []TargetConf, confs *ConfigurationSet) ([]string, error) {
	var out []string
	add := func(names ...string) {
		for _, n := range names {
			if !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
	}

	for _, t := range targets {
		switch {
		case t.Name == AllConfs:
			add(confs.Public()...)
		case confs.Has(t.Name):
			add(t.Name)
		case t.Fallback == AllConfs:
			add(confs.Public()...)
		case t.Fallback != "" && confs.Has(t.Fallback):
			add(t.Fallback)
		default:
			return nil, &UnknownConfigurationError{Module: confs.owner, Name: t.Name}
		}
	}
	return out, nil
}
