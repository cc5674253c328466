package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testDoc(t *testing.T, title string) *Document {
	t.Helper()
	doc := &Document{Attrs: NewAttributes(), Body: "# " + title + "\n"}
	for key, value := range map[string]string{"code": "MDT-001", "title": title, "status": "Proposed"} {
		if err := doc.Attrs.Set(key, value); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}
	return doc
}

// --- Create ---

func TestCreate_WritesFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore()

	path, err := store.Create(dir, "MDT-001-a-title.md", testDoc(t, "A title"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.HasPrefix(string(data), Delimiter) {
		t.Errorf("file does not start with the attribute block:\n%s", data)
	}
}

func TestCreate_CreatesMissingCRDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs", "CRs")
	store := NewFileStore()

	if _, err := store.Create(dir, "MDT-001-x.md", testDoc(t, "x")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}

func TestCreate_ExistingFileIsCollision(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore()

	if _, err := store.Create(dir, "MDT-001-x.md", testDoc(t, "x")); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(dir, "MDT-001-x.md", testDoc(t, "x"))

	var collision *CollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("err = %v, want *CollisionError", err)
	}

	// The loser must not have overwritten the winner.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

// --- Find / Load ---

func TestFind_NumberComparisonIsNumeric(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore()
	if _, err := store.Create(dir, "MDT-066-padded.md", testDoc(t, "padded")); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"MDT-66", "MDT-066", "mdt-66"} {
		entry, err := store.Find(dir, key)
		if err != nil {
			t.Errorf("Find(%q) failed: %v", key, err)
			continue
		}
		if entry.Key != "MDT-066" {
			t.Errorf("Find(%q).Key = %q, want MDT-066", key, entry.Key)
		}
	}
}

func TestFind_MissingKeyIsNotFound(t *testing.T) {
	store := NewFileStore()
	_, err := store.Find(t.TempDir(), "MDT-999")

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want *NotFoundError", err)
	}
	if notFound.Key != "MDT-999" {
		t.Errorf("Key = %q, want MDT-999", notFound.Key)
	}
}

func TestLoad_ParsesDocument(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore()
	if _, err := store.Create(dir, "MDT-001-a.md", testDoc(t, "A title")); err != nil {
		t.Fatal(err)
	}

	doc, entry, err := store.Load(dir, "MDT-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, _ := doc.Attrs.Get("title"); got != "A title" {
		t.Errorf("title = %q", got)
	}
	if entry.Number != 1 {
		t.Errorf("Number = %d, want 1", entry.Number)
	}
}

// --- Write ---

func TestWrite_ReplacesContentAtomically(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore()
	path, err := store.Create(dir, "MDT-001-a.md", testDoc(t, "A title"))
	if err != nil {
		t.Fatal(err)
	}

	doc, _, err := store.Load(dir, "MDT-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.Attrs.Set("status", "Implemented"); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(path, doc); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	reloaded, _, err := store.Load(dir, "MDT-1")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := reloaded.Attrs.Get("status"); got != "Implemented" {
		t.Errorf("status = %q after rewrite", got)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

// --- List / Delete ---

func TestList_SortedByNumber(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore()
	for _, name := range []string{"MDT-010-j.md", "MDT-002-b.md", "MDT-007-g.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.List(dir, "MDT")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []int{2, 7, 10}
	if len(entries) != len(want) {
		t.Fatalf("listed %d entries, want %d", len(entries), len(want))
	}
	for i, n := range want {
		if entries[i].Number != n {
			t.Errorf("entry %d number = %d, want %d", i, entries[i].Number, n)
		}
	}
}

func TestDelete_RemovesFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore()
	if _, err := store.Create(dir, "MDT-001-a.md", testDoc(t, "a")); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(dir, "MDT-001"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	var notFound *NotFoundError
	if _, err := store.Find(dir, "MDT-001"); !errors.As(err, &notFound) {
		t.Errorf("Find after Delete = %v, want *NotFoundError", err)
	}
}
