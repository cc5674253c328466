package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Registry reads and writes the central directory of explicitly
// registered projects: one YAML descriptor file per project, named
// after the folded project id, independent of where the project lives
// on disk.
type Registry struct {
	// Dir is the registry directory. Missing means no registrations.
	Dir string
}

// DefaultRegistryDir resolves the registry location:
// $MDT_REGISTRY_DIR, else $XDG_CONFIG_HOME/mdticket/projects, else
// ~/.config/mdticket/projects.
func DefaultRegistryDir() string {
	if dir := os.Getenv("MDT_REGISTRY_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mdticket", "projects")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mdticket", "projects")
	}
	return filepath.Join(home, ".config", "mdticket", "projects")
}

// Entries loads every registry entry. Unparsable entries are reported
// as warnings and skipped; a missing registry directory is empty, not
// an error. Entries are sorted by filename for deterministic merges.
func (r *Registry) Entries() ([]*Project, []Warning) {
	dirEntries, err := os.ReadDir(r.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []Warning{{Path: r.Dir, Err: err}}
	}
	sort.Slice(dirEntries, func(i, j int) bool { return dirEntries[i].Name() < dirEntries[j].Name() })

	var projects []*Project
	var warnings []Warning
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(r.Dir, name)
		desc, err := ReadDescriptor(path)
		if err != nil {
			warnings = append(warnings, Warning{Path: path, Err: err})
			continue
		}
		if desc.RootPath == "" {
			warnings = append(warnings, Warning{Path: path, Err: fmt.Errorf("registry entry missing required field \"rootPath\"")})
			continue
		}
		if desc.ID == "" {
			desc.ID = strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml")
		}
		projects = append(projects, projectFromDescriptor(desc, desc.RootPath, true))
	}
	return projects, warnings
}

// Register writes (or overwrites) a registry entry. This is the only
// registry mutation the engine performs.
func (r *Registry) Register(d *Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("registering a project requires an id")
	}
	if d.RootPath == "" {
		return fmt.Errorf("registering a project requires a rootPath")
	}
	abs, err := filepath.Abs(d.RootPath)
	if err != nil {
		return fmt.Errorf("resolving rootPath: %w", err)
	}
	d.RootPath = abs
	path := filepath.Join(r.Dir, FoldID(d.ID)+".yaml")
	return WriteDescriptor(path, d)
}
