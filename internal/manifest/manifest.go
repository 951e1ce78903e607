// Package manifest reads route tables from YAML.
//
// A manifest names views instead of defining them; the names are resolved
// against a catalog the application registers in code:
//
//	routes:
//	  - path: /
//	    name: home
//	    views: [home]
//	  - path: /admin
//	    name: admin
//	    views: [admin]
//	    children:
//	      - path: images
//	        name: adminImages
//	        views: [adminImages]
package manifest

import (
	"bytes"
	"os"
	"strings"

	"github.com/vango-dev/navguard/internal/errors"
	"github.com/vango-dev/navguard/pkg/route"
	"github.com/vango-dev/navguard/pkg/view"
	"gopkg.in/yaml.v3"
)

// Catalog maps view names used in a manifest to view references.
type Catalog map[string]view.Ref

// Manifest is the YAML document.
type Manifest struct {
	Routes []Entry `yaml:"routes"`
}

// Entry is one route in a manifest.
type Entry struct {
	Path     string   `yaml:"path"`
	Name     string   `yaml:"name,omitempty"`
	Views    []string `yaml:"views"`
	Children []Entry  `yaml:"children,omitempty"`
}

// Parse decodes a manifest document. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, errors.New("N060").Wrap(err)
	}
	for i, e := range m.Routes {
		if strings.TrimSpace(e.Path) == "" {
			return nil, errors.New("N060").WithDetailf("top-level route %d has no path", i)
		}
	}
	return &m, nil
}

// Descriptors resolves view names against catalog.
func (m *Manifest) Descriptors(catalog Catalog) ([]route.Descriptor, error) {
	return descriptors(m.Routes, catalog)
}

func descriptors(entries []Entry, catalog Catalog) ([]route.Descriptor, error) {
	out := make([]route.Descriptor, 0, len(entries))
	for _, e := range entries {
		d := route.Descriptor{Path: e.Path, Name: e.Name}
		for _, name := range e.Views {
			ref, ok := catalog[name]
			if !ok {
				return nil, errors.New("N061").
					WithRoute(e.Path).
					WithDetailf("view %q", name)
			}
			d.Views = append(d.Views, ref)
		}
		children, err := descriptors(e.Children, catalog)
		if err != nil {
			return nil, err
		}
		if len(children) > 0 {
			d.Children = children
		}
		out = append(out, d)
	}
	return out, nil
}

// Load parses data and builds a route table from it.
func Load(data []byte, catalog Catalog) (*route.Table, error) {
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	descs, err := m.Descriptors(catalog)
	if err != nil {
		return nil, err
	}
	return route.NewTable(descs...)
}

// LoadFile is Load for a file on disk.
func LoadFile(path string, catalog Catalog) (*route.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("N060").WithDetail(path).Wrap(err)
	}
	return Load(data, catalog)
}
