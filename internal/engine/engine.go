// Package engine is the operation surface of the CR document engine.
// It composes project discovery, document storage, and the section
// model into the operations exposed to tool handlers and the CLI, and
// owns the cross-cutting rules none of the lower packages can: key
// normalization against discovered projects, create-time numbering with
// collision retry, and attribute/mirror consistency on writes.
//
// Every operation re-derives its answer from the filesystem (through
// the bounded discovery cache); the engine holds no state of its own.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mdticket/mdticket/internal/document"
	"github.com/mdticket/mdticket/internal/project"
)

// createRetries bounds how many times a create recomputes its number
// after losing a filename race. Two concurrent creators settle in one
// retry; more contention than that means something is broken.
const createRetries = 3

// DefaultStatus is the status assigned to a CR created without one.
const DefaultStatus = "Proposed"

// Engine exposes the CR operations. Construct with New.
type Engine struct {
	discovery *project.Discovery
	store     document.Store
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an engine over a discovery service and a document store.
func New(discovery *project.Discovery, store document.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		discovery: discovery,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Projects returns the current merged project list with discovery
// warnings.
func (e *Engine) Projects() *project.Result {
	return e.discovery.Discover()
}

// FindProject resolves a project by id or code.
func (e *Engine) FindProject(idOrCode string) (*project.Project, error) {
	return e.discovery.Find(idOrCode)
}

// RegisterProject writes a registry entry and makes it visible to the
// next discovery pass.
func (e *Engine) RegisterProject(d *project.Descriptor) (*project.Project, error) {
	if d.Code == "" {
		return nil, fmt.Errorf("registering a project requires a code")
	}
	if err := e.discovery.Registry.Register(d); err != nil {
		return nil, err
	}
	e.discovery.Invalidate()
	return e.discovery.Find(d.ID)
}

// locate resolves a CR reference to its project and canonical key.
// projectRef may be empty, in which case the project is derived from
// the key's code — "mdt-66" alone is a complete reference.
func (e *Engine) locate(projectRef, key string) (*project.Project, string, error) {
	code, number, err := document.ParseKey(key)
	if err != nil {
		return nil, "", err
	}
	ref := projectRef
	if ref == "" {
		ref = code
	}
	p, err := e.discovery.Find(ref)
	if err != nil {
		return nil, "", err
	}
	return p, document.FormatKey(p.Code, number), nil
}
