package engine

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mdticket/mdticket/internal/document"
	"github.com/mdticket/mdticket/internal/project"
	"github.com/mdticket/mdticket/internal/section"
)

// newTestEngine builds an engine over one scannable project named
// "demo" with code DEMO, returning the engine and the project's CR
// directory.
func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "demo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	desc := "code: DEMO\ncrDirectory: docs/CRs\n"
	if err := os.WriteFile(filepath.Join(dir, project.DescriptorFile), []byte(desc), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.DiscardHandler)
	discovery := project.NewDiscovery(
		&project.Scanner{Roots: []string{root}},
		&project.Registry{Dir: t.TempDir()},
		logger,
	)
	e := New(discovery, document.NewFileStore(), logger)
	e.now = func() time.Time { return time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC) }
	return e, filepath.Join(dir, "docs", "CRs")
}

func mustCreate(t *testing.T, e *Engine, req CreateRequest) *CreateResult {
	t.Helper()
	res, err := e.CreateDocument(req)
	if err != nil {
		t.Fatalf("CreateDocument(%q) failed: %v", req.Title, err)
	}
	return res
}

func TestCreateDocument_FirstAndSequential(t *testing.T) {
	e, crDir := newTestEngine(t)

	first := mustCreate(t, e, CreateRequest{Project: "demo", Title: "Fix section editor data loss"})
	if first.Key != "DEMO-001" {
		t.Errorf("first key = %q, want DEMO-001", first.Key)
	}
	wantPath := filepath.Join(crDir, "DEMO-001-fix-section-editor-data-loss.md")
	if first.Path != wantPath {
		t.Errorf("path = %q, want %q", first.Path, wantPath)
	}

	second := mustCreate(t, e, CreateRequest{Project: "DEMO", Title: "Add search"})
	if second.Key != "DEMO-002" {
		t.Errorf("second key = %q, want DEMO-002", second.Key)
	}

	doc, _, err := e.GetDocument("demo", "DEMO-001")
	if err != nil {
		t.Fatal(err)
	}
	for attr, want := range map[string]string{
		"code":        "DEMO-001",
		"title":       "Fix section editor data loss",
		"status":      DefaultStatus,
		"dateCreated": "2026-08-01T10:00:00Z",
	} {
		if got, _ := doc.Attrs.Get(attr); got != want {
			t.Errorf("%s = %q, want %q", attr, got, want)
		}
	}
	if !strings.HasPrefix(doc.Body, "# Fix section editor data loss") {
		t.Errorf("default body = %q", doc.Body)
	}
}

func TestCreateDocument_NumbersFromExistingFiles(t *testing.T) {
	e, crDir := newTestEngine(t)
	if err := os.MkdirAll(crDir, 0o755); err != nil {
		t.Fatal(err)
	}
	// Hand-made files, including an unpadded one, set the high-water mark.
	for _, name := range []string{"DEMO-002-old.md", "demo-41-renamed.md"} {
		if err := os.WriteFile(filepath.Join(crDir, name), []byte("# Old\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	res := mustCreate(t, e, CreateRequest{Project: "demo", Title: "Next"})
	if res.Key != "DEMO-042" {
		t.Errorf("key = %q, want DEMO-042", res.Key)
	}
}

// collideOnce wraps a store and fails the first Create with a
// collision, as if a concurrent creator claimed the filename.
type collideOnce struct {
	document.Store
	fired bool
}

func (c *collideOnce) Create(dir, filename string, doc *document.Document) (string, error) {
	if !c.fired {
		c.fired = true
		return "", &document.CollisionError{Path: filepath.Join(dir, filename)}
	}
	return c.Store.Create(dir, filename, doc)
}

func TestCreateDocument_RetriesAfterCollision(t *testing.T) {
	e, _ := newTestEngine(t)
	e.store = &collideOnce{Store: e.store}

	res := mustCreate(t, e, CreateRequest{Project: "demo", Title: "Raced"})
	if res.Key != "DEMO-001" {
		t.Errorf("key = %q, want DEMO-001", res.Key)
	}
	if _, _, err := e.GetDocument("", "demo-1"); err != nil {
		t.Errorf("document missing after retried create: %v", err)
	}
}

func TestGetDocument_KeyNormalization(t *testing.T) {
	e, _ := newTestEngine(t)
	mustCreate(t, e, CreateRequest{Project: "demo", Title: "Normalize me"})

	// Unpadded, lowercased, and project-less references all resolve.
	for _, ref := range []struct{ project, key string }{
		{"demo", "DEMO-001"},
		{"demo", "demo-1"},
		{"", "DEMO-1"},
		{"", "demo-001"},
	} {
		if _, entry, err := e.GetDocument(ref.project, ref.key); err != nil {
			t.Errorf("GetDocument(%q, %q) failed: %v", ref.project, ref.key, err)
		} else if entry.Key != "DEMO-001" {
			t.Errorf("GetDocument(%q, %q).Key = %q", ref.project, ref.key, entry.Key)
		}
	}

	var notFound *document.NotFoundError
	if _, _, err := e.GetDocument("demo", "DEMO-999"); !errors.As(err, &notFound) {
		t.Errorf("missing CR error = %v, want *document.NotFoundError", err)
	}
}

func TestListDocuments(t *testing.T) {
	e, _ := newTestEngine(t)
	mustCreate(t, e, CreateRequest{Project: "demo", Title: "First", Attributes: map[string]string{"priority": "High"}})
	mustCreate(t, e, CreateRequest{Project: "demo", Title: "Second", Attributes: map[string]string{"type": "Bug Fix"}})

	summaries, err := e.ListDocuments("demo")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(summaries))
	}
	if summaries[0].Key != "DEMO-001" || summaries[0].Title != "First" || summaries[0].Priority != "High" {
		t.Errorf("summary 0 = %+v", summaries[0])
	}
	if summaries[1].Type != "Bug Fix" || summaries[1].Status != DefaultStatus {
		t.Errorf("summary 1 = %+v", summaries[1])
	}
}

func TestDeleteDocument(t *testing.T) {
	e, _ := newTestEngine(t)
	res := mustCreate(t, e, CreateRequest{Project: "demo", Title: "Doomed"})

	if err := e.DeleteDocument("", "demo-1"); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if _, err := os.Stat(res.Path); !os.IsNotExist(err) {
		t.Errorf("file still exists after delete: %v", err)
	}

	var notFound *document.NotFoundError
	if err := e.DeleteDocument("demo", "DEMO-001"); !errors.As(err, &notFound) {
		t.Errorf("second delete = %v, want *document.NotFoundError", err)
	}
}

const sectionedBody = `# Raced Title

Intro paragraph.

## 1. Description

Problem statement.

### Functional Requirements

- req one

## 2. Solution Analysis

### Functional Requirements

- approach
`

func createSectioned(t *testing.T, e *Engine) *CreateResult {
	t.Helper()
	return mustCreate(t, e, CreateRequest{Project: "demo", Title: "Sectioned", Body: sectionedBody})
}

func TestGetSection(t *testing.T) {
	e, _ := newTestEngine(t)
	createSectioned(t, e)

	sec, err := e.GetSection("demo", "DEMO-001", "1. Description")
	if err != nil {
		t.Fatal(err)
	}
	if sec.Level != 2 {
		t.Errorf("level = %d, want 2", sec.Level)
	}
	if !strings.Contains(sec.Content, "Problem statement.") ||
		!strings.Contains(sec.Content, "### Functional Requirements") {
		t.Errorf("content = %q, want body plus nested subsection", sec.Content)
	}

	// Repeated subsection titles need a parent qualifier.
	var ambiguous *section.AmbiguousError
	if _, err := e.GetSection("demo", "DEMO-001", "Functional Requirements"); !errors.As(err, &ambiguous) {
		t.Fatalf("err = %v, want *section.AmbiguousError", err)
	}
	sec, err = e.GetSection("demo", "DEMO-001", "2. Solution Analysis > Functional Requirements")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sec.Content, "- approach") {
		t.Errorf("qualified lookup content = %q", sec.Content)
	}
}

func TestListSections(t *testing.T) {
	e, _ := newTestEngine(t)
	createSectioned(t, e)

	infos, err := e.ListSections("", "demo-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 5 {
		t.Fatalf("sections = %d, want 5", len(infos))
	}
	if infos[0].Title != "Raced Title" || infos[0].Level != 1 {
		t.Errorf("section 0 = %+v", infos[0])
	}
	// Every listed path must resolve back to a section.
	for _, info := range infos {
		if _, err := e.GetSection("demo", "DEMO-001", info.Path); err != nil {
			t.Errorf("listed path %q does not resolve: %v", info.Path, err)
		}
	}
}

func TestUpdateSection_ReplaceAndAppend(t *testing.T) {
	e, _ := newTestEngine(t)
	createSectioned(t, e)

	res, err := e.UpdateSection("demo", "DEMO-001", "1. Description",
		section.OpReplace, "## 1. Description\n\nRewritten.\n")
	if err != nil {
		t.Fatal(err)
	}
	if res.Warning != "" {
		t.Errorf("level-2 replace warned: %q", res.Warning)
	}

	sec, err := e.GetSection("demo", "DEMO-001", "1. Description")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sec.Content, "Rewritten.") || strings.Contains(sec.Content, "Problem statement.") {
		t.Errorf("replaced content = %q", sec.Content)
	}

	if _, err := e.UpdateSection("demo", "DEMO-001", "1. Description",
		section.OpAppend, "Appended line."); err != nil {
		t.Fatal(err)
	}
	sec, err = e.GetSection("demo", "DEMO-001", "1. Description")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sec.Content, "Rewritten.") || !strings.Contains(sec.Content, "Appended line.") {
		t.Errorf("appended content = %q", sec.Content)
	}
}

func TestUpdateSection_LevelOneSafetyNet(t *testing.T) {
	e, _ := newTestEngine(t)
	createSectioned(t, e)

	res, err := e.UpdateSection("demo", "DEMO-001", "Raced Title",
		section.OpReplace, "# Better Title\n")
	if err != nil {
		t.Fatal(err)
	}
	if res.Warning == "" {
		t.Fatal("header-only replace of a level-1 section produced no warning")
	}
	if !strings.Contains(res.Warning, "Better Title") {
		t.Errorf("warning = %q", res.Warning)
	}

	doc, _, err := e.GetDocument("demo", "DEMO-001")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.Body, "# Better Title") {
		t.Error("header was not renamed")
	}
	for _, kept := range []string{"Intro paragraph.", "## 1. Description", "## 2. Solution Analysis", "- approach"} {
		if !strings.Contains(doc.Body, kept) {
			t.Errorf("nested content %q lost by header-only replace", kept)
		}
	}
}

func TestUpdateSection_RejectsGetAndUnknownOps(t *testing.T) {
	e, _ := newTestEngine(t)
	createSectioned(t, e)

	if _, err := e.UpdateSection("demo", "DEMO-001", "1. Description", section.OpGet, ""); err == nil {
		t.Error("get accepted as a mutating operation")
	}
	if _, err := e.UpdateSection("demo", "DEMO-001", "1. Description", "destroy", ""); err == nil {
		t.Error("unknown operation accepted")
	}

	var notFound *section.NotFoundError
	if _, err := e.UpdateSection("demo", "DEMO-001", "No Such Section", section.OpAppend, "x"); !errors.As(err, &notFound) {
		t.Errorf("missing section error = %v, want *section.NotFoundError", err)
	}
}

func TestUpdateAttributes_MirrorSyncAndStamp(t *testing.T) {
	e, _ := newTestEngine(t)
	body := "# Mirrored\n\n- **Status**: Proposed\n- Priority: Low\n"
	mustCreate(t, e, CreateRequest{Project: "demo", Title: "Mirrored", Body: body,
		Attributes: map[string]string{"priority": "Low"}})

	res, err := e.UpdateAttributes("demo", "DEMO-001", map[string]string{
		"status":   "In Progress",
		"priority": "High",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Changed) != 2 || res.Changed[0] != "priority" || res.Changed[1] != "status" {
		t.Errorf("changed = %v", res.Changed)
	}

	doc, _, err := e.GetDocument("demo", "DEMO-001")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := doc.Attrs.Get("status"); got != "In Progress" {
		t.Errorf("status attr = %q", got)
	}
	if got, _ := doc.Attrs.Get("lastModified"); got != "2026-08-01T10:00:00Z" {
		t.Errorf("lastModified = %q", got)
	}
	// Each mirror bullet keeps its own style.
	if !strings.Contains(doc.Body, "- **Status**: In Progress") {
		t.Errorf("bold status bullet not synced; body = %q", doc.Body)
	}
	if !strings.Contains(doc.Body, "- Priority: High") {
		t.Errorf("plain priority bullet not synced; body = %q", doc.Body)
	}
}

func TestUpdateAttributes_EmptyValueRemovesAttributeAndBullet(t *testing.T) {
	e, _ := newTestEngine(t)
	body := "# Mirrored\n\n- **Status**: Proposed\n- **Assignee**: alice\n"
	mustCreate(t, e, CreateRequest{Project: "demo", Title: "Mirrored", Body: body,
		Attributes: map[string]string{"assignee": "alice"}})

	if _, err := e.UpdateAttributes("demo", "DEMO-001", map[string]string{"assignee": ""}); err != nil {
		t.Fatal(err)
	}

	doc, _, err := e.GetDocument("demo", "DEMO-001")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := doc.Attrs.Get("assignee"); ok {
		t.Error("assignee attribute survived an empty-value update")
	}
	if strings.Contains(doc.Body, "Assignee") {
		t.Errorf("mirror bullet for the removed attribute survived; body = %q", doc.Body)
	}
	if !strings.Contains(doc.Body, "- **Status**: Proposed") {
		t.Errorf("unrelated bullet was touched; body = %q", doc.Body)
	}
}

func TestUpdateAttributes_ValidatesBeforeWriting(t *testing.T) {
	e, _ := newTestEngine(t)
	res := mustCreate(t, e, CreateRequest{Project: "demo", Title: "Untouched"})
	before, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.UpdateAttributes("demo", "DEMO-001", map[string]string{
		"status": "Done",
		"title":  "multi\nline",
	})
	var invalid *document.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want *document.ValidationError", err)
	}

	after, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("document changed despite a rejected value in the batch")
	}
}

func TestUpdateStatus(t *testing.T) {
	e, _ := newTestEngine(t)
	mustCreate(t, e, CreateRequest{Project: "demo", Title: "Status me"})

	if _, err := e.UpdateStatus("", "demo-1", "Approved"); err != nil {
		t.Fatal(err)
	}
	doc, _, err := e.GetDocument("demo", "DEMO-001")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := doc.Attrs.Get("status"); got != "Approved" {
		t.Errorf("status = %q, want Approved", got)
	}

	if _, err := e.UpdateStatus("demo", "DEMO-001", ""); err == nil {
		t.Error("empty status accepted")
	}
}

func TestRegisterProject(t *testing.T) {
	e, _ := newTestEngine(t)
	outside := t.TempDir()

	p, err := e.RegisterProject(&project.Descriptor{
		ID:       "External",
		Code:     "EXT",
		RootPath: outside,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !p.Registered {
		t.Error("registered project not marked as such")
	}

	// Registration is visible immediately, case-insensitively.
	if _, err := e.FindProject("external"); err != nil {
		t.Errorf("registered project not discoverable: %v", err)
	}
	if _, err := e.CreateDocument(CreateRequest{Project: "ext", Title: "In the new project"}); err != nil {
		t.Errorf("create in registered project failed: %v", err)
	}
}
