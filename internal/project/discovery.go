package project

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a discovery result may be served
// from cache. Discovery stays re-derivable from the filesystem at any
// moment; the cache only trims repeated directory walks on chatty
// tool-call sequences.
const DefaultCacheTTL = 5 * time.Second

// Result is one discovery pass: the merged project list plus the
// warnings collected along the way.
type Result struct {
	Projects []*Project
	Warnings []Warning
}

// Discovery merges scanner output with registry entries into one
// canonical, de-duplicated project list.
type Discovery struct {
	Scanner  *Scanner
	Registry *Registry
	Logger   *slog.Logger
	CacheTTL time.Duration

	mu       sync.Mutex
	cached   *Result
	cachedAt time.Time
}

// NewDiscovery creates a discovery service over the given scanner and
// registry.
func NewDiscovery(scanner *Scanner, registry *Registry, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		Scanner:  scanner,
		Registry: registry,
		Logger:   logger,
		CacheTTL: DefaultCacheTTL,
	}
}

// Discover returns the current project list, serving a bounded-age
// cache when available.
func (d *Discovery) Discover() *Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cached != nil && time.Since(d.cachedAt) < d.CacheTTL {
		return d.cached
	}
	res := d.discover()
	d.cached = res
	d.cachedAt = time.Now()
	return res
}

// Invalidate drops the cached result; the next Discover re-walks the
// filesystem. Called by the descriptor watcher.
func (d *Discovery) Invalidate() {
	d.mu.Lock()
	d.cached = nil
	d.mu.Unlock()
}

// Find resolves a project by id (case-insensitive) or by code.
func (d *Discovery) Find(idOrCode string) (*Project, error) {
	res := d.Discover()
	folded := FoldID(idOrCode)
	for _, p := range res.Projects {
		if FoldID(p.ID) == folded || FoldID(p.Code) == folded {
			return p, nil
		}
	}
	return nil, &NotFoundError{ID: idOrCode}
}

// NotFoundError reports a project reference that did not resolve.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("project %q not found", e.ID)
}

// discover runs one full merge pass. Registry entries are applied
// first so their explicit metadata wins; a scanned directory that
// matches a registered project by folded id or by root path is the
// same project, not a duplicate. Code uniqueness is enforced across
// the whole result: a later project claiming a taken code is skipped
// with a warning.
func (d *Discovery) discover() *Result {
	registered, warnings := d.Registry.Entries()
	scanned, scanWarnings := d.Scanner.Scan()
	warnings = append(warnings, scanWarnings...)

	var projects []*Project
	byID := make(map[string]*Project)
	byRoot := make(map[string]*Project)
	byCode := make(map[string]*Project)

	add := func(p *Project) {
		id := FoldID(p.ID)
		if _, ok := byID[id]; ok {
			// Same project seen twice. Registry entries are added
			// before scanned ones, so the first occurrence already
			// carries the winning metadata.
			return
		}
		if _, ok := byRoot[p.RootPath]; ok {
			return
		}
		if existing, ok := byCode[p.Code]; ok {
			warnings = append(warnings, Warning{
				Path: p.RootPath,
				Err:  fmt.Errorf("code %q already used by project %q; skipping %q", p.Code, existing.ID, p.ID),
			})
			return
		}
		byID[id] = p
		byRoot[p.RootPath] = p
		byCode[p.Code] = p
		projects = append(projects, p)
	}

	for _, p := range registered {
		add(p)
	}
	for _, p := range scanned {
		add(p)
	}

	for _, w := range warnings {
		d.Logger.Warn("discovery warning", "path", w.Path, "err", w.Err)
	}
	return &Result{Projects: projects, Warnings: warnings}
}
