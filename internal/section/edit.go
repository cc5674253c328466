package section

import (
	"fmt"
	"strings"
)

// Operation is a section edit verb.
type Operation string

const (
	OpGet     Operation = "get"
	OpReplace Operation = "replace"
	OpAppend  Operation = "append"
	OpPrepend Operation = "prepend"
)

// ValidateOperation returns an error if op is not a known edit verb.
func ValidateOperation(op Operation) error {
	switch op {
	case OpGet, OpReplace, OpAppend, OpPrepend:
		return nil
	}
	return fmt.Errorf("invalid section operation %q: must be one of: get, replace, append, prepend", op)
}

// PreservationWarning records that a replace on a level-1 section was
// interpreted as a header-only rename and the section's nested content
// was re-emitted instead of discarded. It is attached to a successful
// edit, never returned as an error.
type PreservationWarning struct {
	NewHeader   string
	Subsections int
}

func (w *PreservationWarning) Message() string {
	return fmt.Sprintf(
		"replacement for a level-1 section looked like a header line with no body; "+
			"interpreted as a rename to %q and preserved %d nested subsection(s). "+
			"To replace the entire section, supply the full replacement content including subsections.",
		w.NewHeader, w.Subsections)
}

// EditResult is the outcome of a mutating section operation.
type EditResult struct {
	// Lines is the complete new document body.
	Lines []string
	// Warning is non-nil when the level-1 preservation heuristic fired.
	Warning *PreservationWarning
}

// Apply performs a mutating operation on section i and returns the new
// body. The receiver is not modified; callers re-parse the result.
//
// append and prepend are structurally safe: existing lines are never
// dropped. append inserts at the end of the section's whole span (after
// any nested subsections, still inside the section); prepend inserts
// directly after the header line. Both are no-ops when the span already
// carries the exact content block at the attachment point, so a retried
// call cannot duplicate its insertion.
//
// replace substitutes the section's exact span — header line plus body
// up to the next sibling-or-higher header — with the supplied content.
// For a level-1 section with nested content, a replacement that is
// empty or is a lone header line almost always means the caller wanted
// to rewrite the header and forgot the section owns the rest of the
// document. That case is treated as a rename: the new header is
// emitted, every following line of the old span is kept, and a
// PreservationWarning describes what happened. The heuristic infers
// intent from content shape; it is a safety net, not a guarantee.
func (m *Model) Apply(i int, op Operation, content string) (*EditResult, error) {
	if i < 0 || i >= len(m.Sections) {
		return nil, fmt.Errorf("section index %d out of range", i)
	}
	sec := m.Sections[i]
	contentLines := SplitLines(content)

	switch op {
	case OpAppend:
		if m.spanEndsWith(sec, contentLines) {
			return &EditResult{Lines: append([]string(nil), m.Lines...)}, nil
		}
		return &EditResult{Lines: insertLines(m.Lines, sec.End, contentLines, true)}, nil

	case OpPrepend:
		if m.spanStartsWith(sec, contentLines) {
			return &EditResult{Lines: append([]string(nil), m.Lines...)}, nil
		}
		return &EditResult{Lines: insertLines(m.Lines, sec.Start+1, contentLines, false)}, nil

	case OpReplace:
		if sec.Level == 1 {
			if res, ok := m.preservingReplace(i, contentLines); ok {
				return res, nil
			}
		}
		return &EditResult{Lines: spliceLines(m.Lines, sec.Start, sec.End, contentLines)}, nil
	}
	return nil, fmt.Errorf("operation %q does not modify the document", op)
}

// preservingReplace applies the level-1 rename heuristic. It fires only
// when the existing section has non-blank content and the replacement
// is empty or a single header line.
func (m *Model) preservingReplace(i int, replacement []string) (*EditResult, bool) {
	sec := m.Sections[i]

	hasContent := false
	for _, line := range m.Lines[sec.Start+1 : sec.End] {
		if strings.TrimSpace(line) != "" {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return nil, false
	}

	newHeader, ok := headerOnly(replacement)
	if !ok {
		return nil, false
	}
	if newHeader == "" {
		// Empty replacement: keep the existing header text.
		newHeader = m.Lines[sec.Start]
	}

	preserved := append([]string{newHeader}, m.Lines[sec.Start+1:sec.End]...)
	_, title, _ := parseHeader(newHeader)
	return &EditResult{
		Lines: spliceLines(m.Lines, sec.Start, sec.End, preserved),
		Warning: &PreservationWarning{
			NewHeader:   title,
			Subsections: len(m.Subsections(i)),
		},
	}, true
}

// headerOnly reports whether the replacement is empty or consists of a
// single header line (ignoring blank lines). The returned string is the
// header line, or "" for an empty replacement.
func headerOnly(lines []string) (string, bool) {
	header := ""
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, _, ok := parseHeader(line); !ok || header != "" {
			return "", false
		}
		header = line
	}
	return header, true
}

// spanEndsWith reports whether the section's content already ends with
// the exact content block. This is how a retried append is detected.
func (m *Model) spanEndsWith(sec Section, content []string) bool {
	n := len(content)
	if n == 0 || sec.End-sec.Start-1 < n {
		return false
	}
	for i, line := range content {
		if m.Lines[sec.End-n+i] != line {
			return false
		}
	}
	return true
}

// spanStartsWith reports whether the section's content already starts
// with the exact content block, directly after the header.
func (m *Model) spanStartsWith(sec Section, content []string) bool {
	n := len(content)
	if n == 0 || sec.End-sec.Start-1 < n {
		return false
	}
	for i, line := range content {
		if m.Lines[sec.Start+1+i] != line {
			return false
		}
	}
	return true
}

// insertLines inserts content at position pos, adding a blank separator
// line between the content and its non-blank neighbor on the attachment
// side. afterSpan is true for append (separator goes before the
// content), false for prepend (separator goes after it).
func insertLines(lines []string, pos int, content []string, afterSpan bool) []string {
	if len(content) == 0 {
		return append([]string(nil), lines...)
	}
	block := append([]string(nil), content...)
	if afterSpan {
		if pos > 0 && strings.TrimSpace(lines[pos-1]) != "" && strings.TrimSpace(block[0]) != "" {
			block = append([]string{""}, block...)
		}
	} else {
		if pos < len(lines) && strings.TrimSpace(lines[pos]) != "" && strings.TrimSpace(block[len(block)-1]) != "" {
			block = append(block, "")
		}
	}
	return spliceLines(lines, pos, pos, block)
}

// spliceLines replaces lines[start:end] with content in a fresh slice.
func spliceLines(lines []string, start, end int, content []string) []string {
	out := make([]string, 0, len(lines)-(end-start)+len(content))
	out = append(out, lines[:start]...)
	out = append(out, content...)
	out = append(out, lines[end:]...)
	return out
}
