// Package document implements the CR document model: a YAML attribute
// block between "---" delimiters followed by a markdown body, stored
// one file per CR under a project's CR directory.
//
// Parsing is deliberately tolerant — CR files are edited by humans and
// LLM agents directly on disk, so malformed input degrades instead of
// failing: a frontmatter block that never closes, or that is not valid
// YAML, is treated as body text and survives a read/write round trip
// byte for byte.
package document

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes the attribute block.
const Delimiter = "---"

// Document is one parsed CR file.
type Document struct {
	// Attrs is the ordered attribute block. Never nil; empty when the
	// file has no (parseable) frontmatter.
	Attrs *Attributes
	// Body is the markdown text after the attribute block.
	Body string
}

// Parse splits raw file content into attributes and body. It never
// returns an error: content that does not form a well-delimited, valid
// YAML attribute block is kept as body so nothing is lost on rewrite.
func Parse(raw string) *Document {
	block, body, ok := splitFrontmatter(raw)
	if !ok {
		return &Document{Attrs: NewAttributes(), Body: raw}
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(block), &node); err != nil {
		return &Document{Attrs: NewAttributes(), Body: raw}
	}
	attrs, err := parseAttributes(&node)
	if err != nil {
		return &Document{Attrs: NewAttributes(), Body: raw}
	}
	return &Document{Attrs: attrs, Body: body}
}

// Serialize renders the document back to file content. Documents
// without attributes are written as bare body.
func (d *Document) Serialize() (string, error) {
	if d.Attrs == nil || d.Attrs.Len() == 0 {
		return d.Body, nil
	}
	block, err := d.Attrs.marshal()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	b.Write(block)
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	if d.Body != "" {
		if !strings.HasPrefix(d.Body, "\n") {
			b.WriteByte('\n')
		}
		b.WriteString(d.Body)
	}
	return b.String(), nil
}

// Title returns the document title: the title attribute if present,
// otherwise the first level-1 header of the body.
func (d *Document) Title() string {
	if title, ok := d.Attrs.Get("title"); ok {
		return title
	}
	for _, line := range strings.Split(d.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, found := strings.CutPrefix(trimmed, "# "); found {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// splitFrontmatter extracts the YAML block between the opening and
// closing delimiters. ok is false when the file does not start with a
// delimiter line or the block never closes.
func splitFrontmatter(raw string) (block, body string, ok bool) {
	lines := strings.Split(raw, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t\r") != Delimiter {
		return "", "", false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t\r") == Delimiter {
			block = strings.Join(lines[1:i], "\n")
			body = strings.Join(lines[i+1:], "\n")
			// A single leading blank line is formatting, not content.
			body = strings.TrimPrefix(body, "\n")
			return block, body, true
		}
	}
	return "", "", false
}
