// Package section implements the markdown section model for CR documents.
//
// A document body is held as a flat slice of lines; sections are spans
// over that slice, identified by header level and position. There is no
// mutable tree — a section at level N owns every following line until
// the next header at level <= N, so the hierarchy is implied entirely
// by content order. Every edit produces a new line slice and the model
// is re-parsed, keeping the text file the single source of truth.
//
// This package follows the same design split as the rest of the engine:
// - model.go: parsing and span bookkeeping
// - resolve.go: path expressions and disambiguation
// - edit.go: get/replace/append/prepend with the level-1 safety net
package section

import (
	"strings"
)

// Section is one header-owned span of the document body.
// Start is the index of the header line; End is the exclusive index of
// the next header at equal or shallower level (or the end of the body).
// Nested deeper headers fall inside [Start, End).
type Section struct {
	Level int
	Title string
	Start int
	End   int
}

// Model is the parsed section structure of one document body.
type Model struct {
	Lines    []string
	Sections []Section
}

// Parse builds the section model for a document body. Header lines
// inside fenced code blocks are ignored. Parsing never fails: content
// before the first header simply belongs to no section.
func Parse(body string) *Model {
	lines := SplitLines(body)
	m := &Model{Lines: lines}

	inFence := false
	fenceMarker := ""
	for i, line := range lines {
		if marker := fenceDelimiter(line); marker != "" {
			if !inFence {
				inFence = true
				fenceMarker = marker
			} else if strings.HasPrefix(marker, fenceMarker) {
				inFence = false
			}
			continue
		}
		if inFence {
			continue
		}
		level, title, ok := parseHeader(line)
		if !ok {
			continue
		}
		m.Sections = append(m.Sections, Section{Level: level, Title: title, Start: i})
	}

	// Close each span at the next header of equal or shallower level.
	for i := range m.Sections {
		m.Sections[i].End = len(lines)
		for j := i + 1; j < len(m.Sections); j++ {
			if m.Sections[j].Level <= m.Sections[i].Level {
				m.Sections[i].End = m.Sections[j].Start
				break
			}
		}
	}

	return m
}

// Path returns the chain of header titles from the outermost ancestor
// down to the section itself. Ancestors are the nearest preceding
// sections at strictly shallower levels — a level-3 header directly
// under a level-1 header has a two-element chain.
func (m *Model) Path(i int) []string {
	sec := m.Sections[i]
	chain := []string{sec.Title}
	level := sec.Level
	for j := i - 1; j >= 0 && level > 1; j-- {
		if m.Sections[j].Level < level {
			chain = append([]string{m.Sections[j].Title}, chain...)
			level = m.Sections[j].Level
		}
	}
	return chain
}

// PathExpr returns the hierarchical path expression for a section,
// usable as input to Resolve.
func (m *Model) PathExpr(i int) string {
	return strings.Join(m.Path(i), PathSeparator)
}

// Content returns the section's body lines: everything between the
// header line and the end of the span, including nested subsections.
func (m *Model) Content(i int) string {
	sec := m.Sections[i]
	return strings.Join(m.Lines[sec.Start+1:sec.End], "\n")
}

// Span returns the section's full text: header line plus content.
func (m *Model) Span(i int) string {
	sec := m.Sections[i]
	return strings.Join(m.Lines[sec.Start:sec.End], "\n")
}

// Subsections returns the indexes of the sections nested directly or
// transitively inside section i.
func (m *Model) Subsections(i int) []int {
	sec := m.Sections[i]
	var nested []int
	for j := i + 1; j < len(m.Sections); j++ {
		if m.Sections[j].Start >= sec.End {
			break
		}
		nested = append(nested, j)
	}
	return nested
}

// SplitLines splits text into lines without dropping a trailing empty
// line produced by a final newline. A trailing "\n" is treated as line
// termination, not as an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// parseHeader recognizes an ATX header line: one to six '#' characters
// followed by whitespace and the header text. Optional closing hashes
// are stripped from the title.
func parseHeader(line string) (level int, title string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		// Four or more leading spaces is an indented code block.
		return 0, "", false
	}
	i := 0
	for i < len(trimmed) && trimmed[i] == '#' {
		i++
	}
	if i == 0 || i > 6 {
		return 0, "", false
	}
	rest := trimmed[i:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	title = strings.TrimSpace(rest)
	// Closing sequence: "# Title #" carries no extra text.
	if stripped := strings.TrimRight(title, "#"); stripped != title {
		if s := strings.TrimRight(stripped, " \t"); s != "" {
			title = s
		}
	}
	return i, title, true
}

// fenceDelimiter returns the fence marker ("```" or "~~~", possibly
// longer) if the line opens or closes a fenced code block.
func fenceDelimiter(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return ""
	}
	for _, ch := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == ch {
			n++
		}
		if n >= 3 {
			return trimmed[:n]
		}
	}
	return ""
}
