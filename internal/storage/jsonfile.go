package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pyro-notes/pyro/internal/document"
	"github.com/pyro-notes/pyro/internal/fsutil"
)

// JSONBackend stores every document in one JSON object keyed by name.
//
// Each write rewrites the whole file through fsutil.WriteFileAtomic.
type JSONBackend struct {
	path string
	perm os.FileMode
}

// jsonEntry is the on-disk value for one document.
type jsonEntry struct {
	DocumentName string `json:"documentName"`
	Text         string `json:"text"`
}

// NewJSON creates a backend for the JSON file at path.
func NewJSON(path string) *JSONBackend {
	return &JSONBackend{path: path, perm: 0o600}
}

// Initialize writes an empty object if the file does not exist.
func (b *JSONBackend) Initialize(ctx context.Context) error {
	ok, err := fsutil.Exists(b.path)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if ok {
		// Fail early on an unreadable file rather than on the first save.
		if _, err := b.load(); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		return nil
	}
	if err := b.store(map[string]jsonEntry{}); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	return nil
}

func (b *JSONBackend) Save(ctx context.Context, doc document.Document) error {
	entries, err := b.load()
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	entries[doc.Name] = jsonEntry{DocumentName: doc.Name, Text: doc.Text}
	if err := b.store(entries); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (b *JSONBackend) FindByName(ctx context.Context, name string) (document.Document, error) {
	entries, err := b.load()
	if err != nil {
		return document.Document{}, fmt.Errorf("find document: %w", err)
	}
	entry, ok := entries[name]
	if !ok {
		return document.Document{}, ErrNotFound
	}
	return document.Document{Name: name, Text: entry.Text}, nil
}

func (b *JSONBackend) ListNames(ctx context.Context) ([]string, error) {
	entries, err := b.load()
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (b *JSONBackend) Delete(ctx context.Context, name string) error {
	entries, err := b.load()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if _, ok := entries[name]; !ok {
		return ErrNotFound
	}
	delete(entries, name)
	if err := b.store(entries); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (b *JSONBackend) Artifacts() []string { return []string{b.path} }

// Seal is a no-op: every write is already on disk.
func (b *JSONBackend) Seal(ctx context.Context) error { return nil }

// Unseal is a no-op.
func (b *JSONBackend) Unseal(ctx context.Context) error { return nil }

func (b *JSONBackend) Close() error { return nil }

func (b *JSONBackend) load() (map[string]jsonEntry, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil, ErrNotReady
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}

	entries := map[string]jsonEntry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", b.path, err)
	}
	if entries == nil {
		entries = map[string]jsonEntry{}
	}
	return entries, nil
}

func (b *JSONBackend) store(entries map[string]jsonEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal documents: %w", err)
	}
	return replaceFile(b.path, data, b.perm)
}
