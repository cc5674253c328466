package engine

import (
	"sort"
	"time"

	"github.com/mdticket/mdticket/internal/document"
)

// AttrResult reports a successful attribute update.
type AttrResult struct {
	Key  string
	Path string
	// Changed lists the attribute keys that were set or removed, in
	// input-independent canonical order.
	Changed []string
}

// UpdateAttributes sets (or, with empty values, removes) attribute
// fields and rewrites any mirrored body bullets for the changed keys.
// All values are validated before the document is touched: one bad
// value means no change at all. lastModified is stamped on every
// successful update.
func (e *Engine) UpdateAttributes(projectRef, key string, updates map[string]string) (*AttrResult, error) {
	if len(updates) == 0 {
		return nil, &document.ValidationError{Field: "", Reason: "no attribute updates supplied"}
	}
	for field, value := range updates {
		if err := document.Validate(field, value); err != nil {
			return nil, err
		}
	}

	p, canonical, err := e.locate(projectRef, key)
	if err != nil {
		return nil, err
	}
	doc, entry, err := e.store.Load(p.CRPath(), canonical)
	if err != nil {
		return nil, err
	}

	changed := make([]string, 0, len(updates))
	for field, value := range updates {
		if err := doc.Attrs.Set(field, value); err != nil {
			return nil, err
		}
		changed = append(changed, field)
	}
	if err := doc.Attrs.Set("lastModified", e.now().UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}

	doc.Body = document.SyncMirrors(doc.Body, doc.Attrs, changed)

	if err := e.store.Write(entry.Path, doc); err != nil {
		return nil, err
	}
	return &AttrResult{Key: canonical, Path: entry.Path, Changed: sortedFields(changed)}, nil
}

// UpdateStatus is the single-attribute convenience path: set status and
// sync its mirror bullet.
func (e *Engine) UpdateStatus(projectRef, key, status string) (*AttrResult, error) {
	if status == "" {
		return nil, &document.ValidationError{Field: "status", Reason: "a status value is required"}
	}
	return e.UpdateAttributes(projectRef, key, map[string]string{"status": status})
}

// sortedFields orders changed keys deterministically for reporting.
func sortedFields(fields []string) []string {
	out := append([]string(nil), fields...)
	sort.Strings(out)
	return out
}
