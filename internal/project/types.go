// Package project implements project discovery for the CR engine:
// scanning configured roots for descriptor files, reading the central
// registry of explicitly registered projects, and merging both into
// one canonical project list.
//
// Projects are never persisted by this package beyond their descriptor
// files — discovery is always re-derivable from the filesystem.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DescriptorFile is the per-project descriptor filename at a project root.
const DescriptorFile = ".mdt.yaml"

// Project is one discovered or registered project.
type Project struct {
	// ID identifies the project; uniqueness is case-insensitive.
	ID string
	// Code is the uppercase prefix used in CR keys and filenames.
	Code string
	// RootPath is the absolute project root directory.
	RootPath string
	// CRDirectory is the path where CR files live, relative to
	// RootPath. Defaults to the root itself.
	CRDirectory string
	// StartNumber is the number assigned to the first CR.
	StartNumber int
	// Description is optional free text from the descriptor.
	Description string
	// Registered marks projects that came from the central registry
	// rather than (only) a filesystem scan.
	Registered bool
}

// CRPath returns the absolute directory holding the project's CR
// files. This is distinct from the project root whenever the
// descriptor sets crDirectory — numbering and lookups must use this
// path, never the root.
func (p *Project) CRPath() string {
	if p.CRDirectory == "" || p.CRDirectory == "." {
		return p.RootPath
	}
	if filepath.IsAbs(p.CRDirectory) {
		return p.CRDirectory
	}
	return filepath.Join(p.RootPath, p.CRDirectory)
}

// FoldID normalizes a project identifier for equality checks. Every
// comparison of project ids — scanner, registry, and merge alike —
// goes through this one helper.
func FoldID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Descriptor is the YAML schema shared by project descriptor files and
// registry entries. rootPath is meaningful only in registry entries;
// a descriptor found by scanning gets its root from its location.
type Descriptor struct {
	ID          string `yaml:"id,omitempty"`
	Code        string `yaml:"code"`
	RootPath    string `yaml:"rootPath,omitempty"`
	CRDirectory string `yaml:"crDirectory,omitempty"`
	StartNumber int    `yaml:"startNumber,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ReadDescriptor loads and validates a descriptor file.
func ReadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	if d.Code == "" {
		return nil, fmt.Errorf("descriptor %s: missing required field \"code\"", path)
	}
	return &d, nil
}

// WriteDescriptor marshals a descriptor to a file.
func WriteDescriptor(path string, d *Descriptor) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling descriptor: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// projectFromDescriptor builds a Project from a descriptor and the
// root it applies to. The id falls back to the root's base name.
func projectFromDescriptor(d *Descriptor, root string, registered bool) *Project {
	id := d.ID
	if id == "" {
		id = filepath.Base(root)
	}
	start := d.StartNumber
	if start < 1 {
		start = 1
	}
	return &Project{
		ID:          id,
		Code:        d.Code,
		RootPath:    root,
		CRDirectory: d.CRDirectory,
		StartNumber: start,
		Description: d.Description,
		Registered:  registered,
	}
}
