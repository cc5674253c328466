package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// NotFoundError reports a CR key that resolved to no file.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("CR %q not found", e.Key)
}

// CollisionError reports a create that lost the numbering race: the
// target filename appeared between number derivation and the write.
// The caller retries with a freshly recomputed number.
type CollisionError struct {
	Path string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("CR file already exists: %s (recompute the number and retry)", e.Path)
}

// Entry is one CR file found in a project's CR directory.
type Entry struct {
	Key    string
	Number int
	Path   string
}

// Store defines document persistence. Abstracted for testability.
type Store interface {
	Find(dir, key string) (Entry, error)
	Load(dir, key string) (*Document, Entry, error)
	Create(dir, filename string, doc *Document) (string, error)
	Write(path string, doc *Document) error
	List(dir, code string) ([]Entry, error)
	Delete(dir, key string) error
}

// FileStore implements Store on the local filesystem. Writes replace
// the whole file via write-to-temp-then-rename, so readers never see a
// partially written document.
type FileStore struct{}

// NewFileStore creates a filesystem-backed document store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// List returns the CR entries for a project code, sorted by number.
// Files whose names do not carry a parseable "{code}-{number}" prefix
// are ignored. A missing directory is an empty project, not an error.
func (fs *FileStore) List(dir, code string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading CR directory %s: %w", dir, err)
	}

	pattern := filenameNumberPattern(code)
	var result []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		n, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			continue
		}
		result = append(result, Entry{
			Key:    FormatKey(code, int(n)),
			Number: int(n),
			Path:   filepath.Join(dir, de.Name()),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

// Find locates the file for a CR key. The key's number is compared
// numerically, so "MDT-66" and "MDT-066" name the same CR.
func (fs *FileStore) Find(dir, key string) (Entry, error) {
	code, number, err := ParseKey(key)
	if err != nil {
		return Entry{}, err
	}
	entries, err := fs.List(dir, code)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Number == number {
			return e, nil
		}
	}
	return Entry{}, &NotFoundError{Key: FormatKey(code, number)}
}

// Load reads and parses the document for a CR key.
func (fs *FileStore) Load(dir, key string) (*Document, Entry, error) {
	entry, err := fs.Find(dir, key)
	if err != nil {
		return nil, Entry{}, err
	}
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		if os.IsNotExist(err) {
			// Raced with a deletion between Find and ReadFile.
			return nil, Entry{}, &NotFoundError{Key: entry.Key}
		}
		return nil, Entry{}, fmt.Errorf("reading %s: %w", entry.Path, err)
	}
	return Parse(string(data)), entry, nil
}

// Create writes a new CR file, failing with *CollisionError if the
// filename already exists. The exclusive-create open is the collision
// detector for concurrent numbering races.
func (fs *FileStore) Create(dir, filename string, doc *Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating CR directory: %w", err)
	}

	content, err := doc.Serialize()
	if err != nil {
		return "", fmt.Errorf("serializing document: %w", err)
	}

	path := filepath.Join(dir, filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", &CollisionError{Path: path}
		}
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

// Write replaces an existing CR file atomically: the content goes to a
// temp file in the same directory, then renames over the target.
func (fs *FileStore) Write(path string, doc *Document) error {
	content, err := doc.Serialize()
	if err != nil {
		return fmt.Errorf("serializing document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Delete removes the file for a CR key.
func (fs *FileStore) Delete(dir, key string) error {
	entry, err := fs.Find(dir, key)
	if err != nil {
		return err
	}
	if err := os.Remove(entry.Path); err != nil {
		return fmt.Errorf("deleting %s: %w", entry.Path, err)
	}
	return nil
}
