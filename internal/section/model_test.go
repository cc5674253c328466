package section

import (
	"strings"
	"testing"
)

const sampleBody = `# CR Title

Intro paragraph.

## 1. Description

Problem statement.

### Functional

Functional description requirements.

## 2. Solution Analysis

### Functional

Functional solution requirements.

## 3. Implementation

Steps.
`

// --- Parse ---

func TestParse_FindsAllSectionsAtEveryDepth(t *testing.T) {
	m := Parse(sampleBody)
	if len(m.Sections) != 6 {
		t.Fatalf("parsed %d sections, want 6", len(m.Sections))
	}

	wantTitles := []string{"CR Title", "1. Description", "Functional", "2. Solution Analysis", "Functional", "3. Implementation"}
	for i, want := range wantTitles {
		if m.Sections[i].Title != want {
			t.Errorf("section %d title = %q, want %q", i, m.Sections[i].Title, want)
		}
	}
	wantLevels := []int{1, 2, 3, 2, 3, 2}
	for i, want := range wantLevels {
		if m.Sections[i].Level != want {
			t.Errorf("section %d level = %d, want %d", i, m.Sections[i].Level, want)
		}
	}
}

func TestParse_SpanOwnsNestedSubsections(t *testing.T) {
	m := Parse(sampleBody)

	// "1. Description" (level 2) owns the nested "Functional" (level 3)
	// and ends where "2. Solution Analysis" starts.
	desc := m.Sections[1]
	next := m.Sections[3]
	if desc.End != next.Start {
		t.Errorf("description End = %d, want %d (start of next level-2 section)", desc.End, next.Start)
	}

	content := m.Content(1)
	if !strings.Contains(content, "### Functional") {
		t.Errorf("level-2 content should include nested level-3 header, got:\n%s", content)
	}
}

func TestParse_TopSectionOwnsWholeDocument(t *testing.T) {
	m := Parse(sampleBody)
	top := m.Sections[0]
	if top.Start != 0 {
		t.Errorf("top Start = %d, want 0", top.Start)
	}
	if top.End != len(m.Lines) {
		t.Errorf("top End = %d, want %d", top.End, len(m.Lines))
	}
}

func TestParse_IgnoresHeadersInCodeFences(t *testing.T) {
	body := "# Real\n\n```\n# Not a header\n## Also not\n```\n\n## Real Too\n"
	m := Parse(body)
	if len(m.Sections) != 2 {
		t.Fatalf("parsed %d sections, want 2", len(m.Sections))
	}
	if m.Sections[1].Title != "Real Too" {
		t.Errorf("second section = %q, want Real Too", m.Sections[1].Title)
	}
}

func TestParse_IgnoresIndentedCodeAndBogusHeaders(t *testing.T) {
	body := "# Top\n\n    # indented code\n#NoSpace is a tag, not a header\n####### seven hashes\n"
	m := Parse(body)
	if len(m.Sections) != 1 {
		t.Fatalf("parsed %d sections, want 1: %+v", len(m.Sections), m.Sections)
	}
}

func TestParse_StripsClosingHashes(t *testing.T) {
	m := Parse("## Closed Header ##\n")
	if m.Sections[0].Title != "Closed Header" {
		t.Errorf("title = %q, want Closed Header", m.Sections[0].Title)
	}
}

func TestParse_EmptyBody(t *testing.T) {
	m := Parse("")
	if len(m.Sections) != 0 {
		t.Errorf("parsed %d sections from empty body, want 0", len(m.Sections))
	}
}

// --- Path ---

func TestPath_BuildsContainmentChain(t *testing.T) {
	m := Parse(sampleBody)

	// Second "Functional" is nested under "2. Solution Analysis" under "CR Title".
	got := m.PathExpr(4)
	want := "CR Title > 2. Solution Analysis > Functional"
	if got != want {
		t.Errorf("PathExpr = %q, want %q", got, want)
	}
}

func TestPath_SkippedLevels(t *testing.T) {
	// Level 3 directly under level 1: chain has two elements.
	m := Parse("# A\n\n### B\n")
	got := m.PathExpr(1)
	if got != "A > B" {
		t.Errorf("PathExpr = %q, want \"A > B\"", got)
	}
}

// --- Subsections ---

func TestSubsections_CountsNestedOnly(t *testing.T) {
	m := Parse(sampleBody)

	if n := len(m.Subsections(0)); n != 5 {
		t.Errorf("top-level subsections = %d, want 5", n)
	}
	if n := len(m.Subsections(1)); n != 1 {
		t.Errorf("description subsections = %d, want 1", n)
	}
	if n := len(m.Subsections(5)); n != 0 {
		t.Errorf("implementation subsections = %d, want 0", n)
	}
}

// --- SplitLines ---

func TestSplitLines_TrailingNewlineIsTermination(t *testing.T) {
	got := SplitLines("a\nb\n")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("SplitLines = %v, want [a b]", got)
	}
}
