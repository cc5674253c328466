package engine

import (
	"errors"
	"strings"

	"github.com/mdticket/mdticket/internal/section"
)

// errReadOnlyOp rejects the "get" verb on the mutating section path.
var errReadOnlyOp = errors.New(`operation "get" does not modify the document; use the section read instead`)

// SectionContent is the result of a section read.
type SectionContent struct {
	Path    string
	Level   int
	Title   string
	Content string
}

// GetSection resolves a path expression and returns the section's
// content: everything between its header and the next header at the
// same or shallower level, nested subsections included.
func (e *Engine) GetSection(projectRef, key, expr string) (*SectionContent, error) {
	p, canonical, err := e.locate(projectRef, key)
	if err != nil {
		return nil, err
	}
	doc, _, err := e.store.Load(p.CRPath(), canonical)
	if err != nil {
		return nil, err
	}

	model := section.Parse(doc.Body)
	i, err := model.Resolve(expr)
	if err != nil {
		return nil, err
	}
	sec := model.Sections[i]
	return &SectionContent{
		Path:    model.PathExpr(i),
		Level:   sec.Level,
		Title:   sec.Title,
		Content: model.Content(i),
	}, nil
}

// SectionInfo is one entry of a document's section listing.
type SectionInfo struct {
	Level int
	Title string
	// Path is a path expression that resolves back to this section
	// (possibly ambiguously, when sibling trees repeat titles).
	Path string
}

// ListSections returns the document's full section tree in order.
func (e *Engine) ListSections(projectRef, key string) ([]SectionInfo, error) {
	p, canonical, err := e.locate(projectRef, key)
	if err != nil {
		return nil, err
	}
	doc, _, err := e.store.Load(p.CRPath(), canonical)
	if err != nil {
		return nil, err
	}

	model := section.Parse(doc.Body)
	infos := make([]SectionInfo, len(model.Sections))
	for i, sec := range model.Sections {
		infos[i] = SectionInfo{Level: sec.Level, Title: sec.Title, Path: model.PathExpr(i)}
	}
	return infos, nil
}

// UpdateResult reports a successful section edit.
type UpdateResult struct {
	Key  string
	Path string
	// Warning is the human-readable preservation notice when the
	// level-1 replace safety net rewrote the edit; empty otherwise.
	Warning string
}

// UpdateSection applies a replace/append/prepend to one section and
// writes the document back atomically. The target must resolve to
// exactly one section; the attribute block is untouched.
func (e *Engine) UpdateSection(projectRef, key, expr string, op section.Operation, content string) (*UpdateResult, error) {
	if err := section.ValidateOperation(op); err != nil {
		return nil, err
	}
	if op == section.OpGet {
		return nil, errReadOnlyOp
	}

	p, canonical, err := e.locate(projectRef, key)
	if err != nil {
		return nil, err
	}
	doc, entry, err := e.store.Load(p.CRPath(), canonical)
	if err != nil {
		return nil, err
	}

	model := section.Parse(doc.Body)
	i, err := model.Resolve(expr)
	if err != nil {
		return nil, err
	}
	res, err := model.Apply(i, op, content)
	if err != nil {
		return nil, err
	}

	doc.Body = joinBody(res.Lines, doc.Body)
	if err := e.store.Write(entry.Path, doc); err != nil {
		return nil, err
	}

	result := &UpdateResult{Key: canonical, Path: entry.Path}
	if res.Warning != nil {
		result.Warning = res.Warning.Message()
	}
	return result, nil
}

// joinBody reassembles edited lines, keeping the original body's final
// newline convention.
func joinBody(lines []string, original string) string {
	body := strings.Join(lines, "\n")
	if strings.HasSuffix(original, "\n") && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return body
}
