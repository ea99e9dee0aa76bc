// SPDX-License-Identifier: MPL-2.0

package ivymod

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alfine/alfine/pkg/coord"
)

// DescriptorVersion is written to the version attribute of encoded descriptors.
const DescriptorVersion = "2.0"

type (
	xmlModule struct {
		XMLName        xml.Name           `xml:"ivy-module"`
		Version        string             `xml:"version,attr,omitempty"`
		Info           *xmlInfo           `xml:"info"`
		Configurations *xmlConfigurations `xml:"configurations"`
		Publications   *xmlPublications   `xml:"publications"`
		Dependencies   *xmlDependencies   `xml:"dependencies"`
	}

	xmlInfo struct {
		Organisation string `xml:"organisation,attr"`
		Module       string `xml:"module,attr"`
		Revision     string `xml:"revision,attr"`
		Status       string `xml:"status,attr,omitempty"`
	}

	xmlConfigurations struct {
		Confs []xmlConf `xml:"conf"`
	}

	xmlConf struct {
		Name        string `xml:"name,attr"`
		Visibility  string `xml:"visibility,attr,omitempty"`
		Extends     string `xml:"extends,attr,omitempty"`
		Transitive  string `xml:"transitive,attr,omitempty"`
		Deprecated  string `xml:"deprecated,attr,omitempty"`
		Description string `xml:"description,attr,omitempty"`
	}

	xmlPublications struct {
		Artifacts []xmlArtifact `xml:"artifact"`
	}

	xmlArtifact struct {
		Name string `xml:"name,attr,omitempty"`
		Type string `xml:"type,attr,omitempty"`
		Ext  string `xml:"ext,attr,omitempty"`
		Conf string `xml:"conf,attr,omitempty"`
	}

	xmlDependencies struct {
		DefaultConf        string          `xml:"defaultconf,attr,omitempty"`
		DefaultConfMapping string          `xml:"defaultconfmapping,attr,omitempty"`
		Deps               []xmlDependency `xml:"dependency"`
	}

	xmlDependency struct {
		Org   string `xml:"org,attr,omitempty"`
		Name  string `xml:"name,attr"`
		Rev   string `xml:"rev,attr"`
		Conf  string `xml:"conf,attr,omitempty"`
		Force string `xml:"force,attr,omitempty"`
	}
)

// ParseDescriptor reads an ivy.xml descriptor and builds a Module from it.
// source labels the descriptor in errors (typically its path).
func ParseDescriptor(r io.Reader, source string) (*Module, error) {
	md, err := DecodeMetadata(r, source)
	if err != nil {
		return nil, err
	}
	return NewModule(md)
}

// LoadDescriptorFile reads and parses the ivy.xml descriptor at path.
func LoadDescriptorFile(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	return ParseDescriptor(bytes.NewReader(data), path)
}

// DecodeMetadata reads an ivy.xml descriptor into raw Metadata without
// building a Module.
func DecodeMetadata(r io.Reader, source string) (Metadata, error) {
	var doc xmlModule
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Metadata{}, &MalformedModuleError{Source: source, Reason: fmt.Sprintf("invalid XML: %v", err)}
	}
	if doc.Info == nil {
		return Metadata{}, &MalformedModuleError{Source: source, Reason: "missing <info> element"}
	}

	id := coord.Coordinate{
		Organization: coord.Organization(strings.TrimSpace(doc.Info.Organisation)),
		Name:         coord.Name(strings.TrimSpace(doc.Info.Module)),
		Revision:     coord.Revision(strings.TrimSpace(doc.Info.Revision)),
	}
	if err := id.Validate(); err != nil {
		return Metadata{}, &MalformedModuleError{Source: source, Reason: "<info>: " + err.Error()}
	}

	md := Metadata{ID: id, Source: source}

	if doc.Configurations != nil {
		for _, c := range doc.Configurations.Confs {
			md.Configurations = append(md.Configurations, Configuration{
				Name:        strings.TrimSpace(c.Name),
				Visibility:  Visibility(strings.TrimSpace(c.Visibility)),
				Extends:     splitList(c.Extends),
				Transitive:  !strings.EqualFold(strings.TrimSpace(c.Transitive), "false"),
				Deprecated:  c.Deprecated,
				Description: c.Description,
			})
		}
	}

	if doc.Publications != nil {
		md.Publications = make([]Artifact, 0, len(doc.Publications.Artifacts))
		for _, a := range doc.Publications.Artifacts {
			md.Publications = append(md.Publications, Artifact{
				Name:  strings.TrimSpace(a.Name),
				Type:  strings.TrimSpace(a.Type),
				Ext:   strings.TrimSpace(a.Ext),
				Confs: splitList(a.Conf),
			})
		}
	}

	if doc.Dependencies != nil {
		md.DefaultMapping = strings.TrimSpace(doc.Dependencies.DefaultConfMapping)
		if md.DefaultMapping == "" {
			md.DefaultMapping = strings.TrimSpace(doc.Dependencies.DefaultConf)
		}
		for i, d := range doc.Dependencies.Deps {
			org := strings.TrimSpace(d.Org)
			if org == "" {
				org = string(id.Organization)
			}
			target := coord.Coordinate{
				Organization: coord.Organization(org),
				Name:         coord.Name(strings.TrimSpace(d.Name)),
				Revision:     coord.Revision(strings.TrimSpace(d.Rev)),
			}
			if err := target.Validate(); err != nil {
				return Metadata{}, &MalformedModuleError{
					Module: id,
					Source: source,
					Reason: fmt.Sprintf("dependency #%d: %v", i+1, err),
				}
			}
			md.Dependencies = append(md.Dependencies, Dependency{
				Target:  target,
				Mapping: strings.TrimSpace(d.Conf),
				Force:   strings.EqualFold(strings.TrimSpace(d.Force), "true"),
			})
		}
	}

	return md, nil
}

// EncodeDescriptor writes m as an indented ivy.xml document.
func EncodeDescriptor(w io.Writer, m *Module) error {
	md := m.Metadata()

	doc := xmlModule{
		Version: DescriptorVersion,
		Info: &xmlInfo{
			Organisation: string(md.ID.Organization),
			Module:       string(md.ID.Name),
			Revision:     string(md.ID.Revision),
		},
		Configurations: &xmlConfigurations{},
		Dependencies:   &xmlDependencies{DefaultConfMapping: md.DefaultMapping},
	}

	for _, c := range md.Configurations {
		xc := xmlConf{
			Name:        c.Name,
			Visibility:  string(c.Visibility),
			Extends:     strings.Join(c.Extends, ","),
			Deprecated:  c.Deprecated,
			Description: c.Description,
		}
		if !c.Transitive {
			xc.Transitive = "false"
		}
		doc.Configurations.Confs = append(doc.Configurations.Confs, xc)
	}

	if md.Publications != nil {
		doc.Publications = &xmlPublications{}
		for _, a := range md.Publications {
			doc.Publications.Artifacts = append(doc.Publications.Artifacts, xmlArtifact{
				Name: a.Name,
				Type: a.Type,
				Ext:  a.Ext,
				Conf: strings.Join(a.Confs, ","),
			})
		}
	}

	for _, d := range md.Dependencies {
		xd := xmlDependency{
			Org:  string(d.Target.Organization),
			Name: string(d.Target.Name),
			Rev:  string(d.Target.Revision),
			Conf: d.Mapping,
		}
		if d.Force {
			xd.Force = "true"
		}
		doc.Dependencies.Deps = append(doc.Dependencies.Deps, xd)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode descriptor for %s: %w", md.ID, err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
