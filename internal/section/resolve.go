package section

import (
	"fmt"
	"strings"
)

// PathSeparator joins header titles in a hierarchical path expression.
const PathSeparator = " > "

// NotFoundError reports a path expression that matched no section.
type NotFoundError struct {
	Expr string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("section %q not found", e.Expr)
}

// AmbiguousError reports a path expression that matched more than one
// section. Candidates holds the full hierarchical path of every match
// so the caller can pick one; the resolver never guesses.
type AmbiguousError struct {
	Expr       string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("section %q is ambiguous: %d candidates (%s)",
		e.Expr, len(e.Candidates), strings.Join(e.Candidates, "; "))
}

// Resolve maps a path expression to exactly one section index.
//
// An expression is either a bare header text, matched case-sensitively
// against the full title of every section at every level, or a chain of
// titles separated by " > ", matched against the tail of each section's
// containment chain. Components may carry leading '#' markers (callers
// often paste "## Description"); these are stripped, as is surrounding
// whitespace.
//
// Zero matches return *NotFoundError; more than one return
// *AmbiguousError listing every candidate's full path.
func (m *Model) Resolve(expr string) (int, error) {
	components := ParsePathExpr(expr)
	if len(components) == 0 {
		return 0, &NotFoundError{Expr: expr}
	}

	var matches []int
	for i := range m.Sections {
		if m.matchesChain(i, components) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return 0, &NotFoundError{Expr: expr}
	case 1:
		return matches[0], nil
	}

	candidates := make([]string, len(matches))
	for i, idx := range matches {
		candidates[i] = m.PathExpr(idx)
	}
	return 0, &AmbiguousError{Expr: expr, Candidates: candidates}
}

// ParsePathExpr splits a path expression into normalized components:
// surrounding whitespace and leading '#' markers removed, empty
// components dropped.
func ParsePathExpr(expr string) []string {
	var components []string
	for _, part := range strings.Split(expr, ">") {
		part = strings.TrimSpace(part)
		part = strings.TrimLeft(part, "#")
		part = strings.TrimSpace(part)
		if part != "" {
			components = append(components, part)
		}
	}
	return components
}

// matchesChain reports whether the expression components match the
// tail of section i's containment chain. Matching the tail rather than
// the full chain lets a caller disambiguate with the shortest parent
// prefix that is unique.
func (m *Model) matchesChain(i int, components []string) bool {
	chain := m.Path(i)
	if len(components) > len(chain) {
		return false
	}
	offset := len(chain) - len(components)
	for j, c := range components {
		if chain[offset+j] != c {
			return false
		}
	}
	return true
}
