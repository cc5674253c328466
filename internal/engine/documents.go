package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/mdticket/mdticket/internal/document"
	"github.com/mdticket/mdticket/internal/project"
)

// CreateRequest describes a new CR. Title is required; Attributes may
// carry any additional attribute fields; Body is optional markdown
// written below the attribute block.
type CreateRequest struct {
	Project    string
	Title      string
	Attributes map[string]string
	Body       string
}

// CreateResult reports the created CR.
type CreateResult struct {
	Key     string
	Number  int
	Path    string
	Project *project.Project
}

// CreateDocument numbers and writes a new CR file. The number comes
// from a directory scan at call time; if a concurrent create claims the
// same filename first, the number is recomputed and the create retried.
func (e *Engine) CreateDocument(req CreateRequest) (*CreateResult, error) {
	if req.Title == "" {
		return nil, &document.ValidationError{Field: "title", Reason: "a CR requires a title"}
	}
	p, err := e.discovery.Find(req.Project)
	if err != nil {
		return nil, err
	}

	doc, err := e.buildDocument(p, req)
	if err != nil {
		return nil, err
	}

	dir := p.CRPath()
	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		number, err := document.NextNumber(dir, p.Code, p.StartNumber)
		if err != nil {
			return nil, err
		}
		key := document.FormatKey(p.Code, number)
		if err := doc.Attrs.Set("code", key); err != nil {
			return nil, err
		}

		path, err := e.store.Create(dir, document.Filename(p.Code, number, req.Title), doc)
		if err == nil {
			return &CreateResult{Key: key, Number: number, Path: path, Project: p}, nil
		}
		var collision *document.CollisionError
		if !errors.As(err, &collision) {
			return nil, err
		}
		lastErr = err
		e.logger.Warn("create lost numbering race; retrying", "project", p.ID, "path", collision.Path)
	}
	return nil, fmt.Errorf("creating CR in %s: %w", dir, lastErr)
}

// buildDocument assembles the initial document: caller attributes plus
// the defaults every CR carries.
func (e *Engine) buildDocument(p *project.Project, req CreateRequest) (*document.Document, error) {
	doc := &document.Document{Attrs: document.NewAttributes(), Body: req.Body}

	if err := doc.Attrs.Set("title", req.Title); err != nil {
		return nil, err
	}
	for key, value := range req.Attributes {
		if err := doc.Attrs.Set(key, value); err != nil {
			return nil, err
		}
	}
	if _, ok := doc.Attrs.Get("status"); !ok {
		if err := doc.Attrs.Set("status", DefaultStatus); err != nil {
			return nil, err
		}
	}
	if _, ok := doc.Attrs.Get("dateCreated"); !ok {
		if err := doc.Attrs.Set("dateCreated", e.now().UTC().Format(time.RFC3339)); err != nil {
			return nil, err
		}
	}

	if doc.Body == "" {
		doc.Body = "# " + req.Title + "\n"
	}
	return doc, nil
}

// GetDocument loads a CR. The project reference may be empty; the key's
// code then names the project.
func (e *Engine) GetDocument(projectRef, key string) (*document.Document, document.Entry, error) {
	p, canonical, err := e.locate(projectRef, key)
	if err != nil {
		return nil, document.Entry{}, err
	}
	return e.store.Load(p.CRPath(), canonical)
}

// Summary is one row of a project's CR listing.
type Summary struct {
	Key      string
	Title    string
	Status   string
	Type     string
	Priority string
	Path     string
}

// ListDocuments enumerates a project's CRs sorted by number, reading
// each file's attribute block for the listing columns.
func (e *Engine) ListDocuments(projectRef string) ([]Summary, error) {
	p, err := e.discovery.Find(projectRef)
	if err != nil {
		return nil, err
	}
	entries, err := e.store.List(p.CRPath(), p.Code)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		doc, _, err := e.store.Load(p.CRPath(), entry.Key)
		if err != nil {
			// Deleted between List and Load; skip.
			var notFound *document.NotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return nil, err
		}
		s := Summary{Key: entry.Key, Path: entry.Path, Title: doc.Title()}
		s.Status, _ = doc.Attrs.Get("status")
		s.Type, _ = doc.Attrs.Get("type")
		s.Priority, _ = doc.Attrs.Get("priority")
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// DeleteDocument removes a CR file.
func (e *Engine) DeleteDocument(projectRef, key string) error {
	p, canonical, err := e.locate(projectRef, key)
	if err != nil {
		return err
	}
	return e.store.Delete(p.CRPath(), canonical)
}
