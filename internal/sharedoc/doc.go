// Package sharedoc abstracts the shared plain-text document used for
// cross-device merge. Concurrent writers are last-writer-wins.
package sharedoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DocumentStore is the contract for reading and replacing the shared
// text blob.
type DocumentStore interface {
	// Read returns the entire document, or "" when none exists yet.
	Read(ctx context.Context) (string, error)

	// Write replaces the entire document.
	Write(ctx context.Context, text string) error
}

// FileDocument is the file-backed document store.
type FileDocument struct {
	path string
}

// NewFileDocument creates a document store at path.
func NewFileDocument(path string) *FileDocument {
	return &FileDocument{path: path}
}

// Read returns the document contents. A missing file is an empty
// document, not an error.
func (d *FileDocument) Read(_ context.Context) (string, error) {
	data, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading shared document %s: %w", d.path, err)
	}
	return string(data), nil
}

// Write replaces the document atomically: the new contents land in a
// temp file first and are renamed over the old document, so readers
// never observe a half-written blob.
func (d *FileDocument) Write(_ context.Context, text string) error {
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating document directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".shared-*")
	if err != nil {
		return fmt.Errorf("creating temp document: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing shared document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing shared document: %w", err)
	}

	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing shared document %s: %w", d.path, err)
	}
	return nil
}
