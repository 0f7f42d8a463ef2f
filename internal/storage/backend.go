package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/pyro-notes/pyro/internal/document"
	"github.com/pyro-notes/pyro/internal/fsutil"
)

// replaceFile writes artifacts; tests swap it to inject failures.
var replaceFile = fsutil.WriteFileAtomic

var (
	// ErrNotFound is returned when no document has the requested name.
	ErrNotFound = errors.New("document not found")

	// ErrNotReady is returned when an operation runs before Initialize or
	// between Seal and Unseal.
	ErrNotReady = errors.New("backend not ready")
)

// Backend is a persistence strategy for documents.
type Backend interface {
	// Initialize creates the artifact and its structure if absent.
	// Safe to call multiple times.
	Initialize(ctx context.Context) error

	// Save upserts doc by name as a single atomic operation.
	Save(ctx context.Context, doc document.Document) error

	// FindByName returns the document named name, or ErrNotFound.
	FindByName(ctx context.Context, name string) (document.Document, error)

	// ListNames returns every stored document name.
	ListNames(ctx context.Context) ([]string, error)

	// Delete removes the document named name, or returns ErrNotFound.
	Delete(ctx context.Context, name string) error

	// Artifacts lists the files that hold the backend's data, primary
	// artifact first. Ephemeral backends return nil.
	Artifacts() []string

	// Seal flushes all state into the artifacts and releases handles.
	Seal(ctx context.Context) error

	// Unseal restores the working state after the artifacts were decrypted.
	Unseal(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}

// Kind selects a Backend strategy.
type Kind string

const (
	KindSQLite  Kind = "sqlite"
	KindJSON    Kind = "json"
	KindArchive Kind = "archive"
)

// Kinds lists the supported backend kinds.
var Kinds = []Kind{KindSQLite, KindJSON, KindArchive}

// ParseKind converts a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown backend %q: must be one of %v", s, Kinds)
}

// New creates the backend of the given kind bound to path.
func New(kind Kind, path string) (Backend, error) {
	if path == "" {
		return nil, errors.New("storage path is required")
	}
	switch kind {
	case KindSQLite:
		return NewSQLite(path), nil
	case KindJSON:
		return NewJSON(path), nil
	case KindArchive:
		return NewArchive(path), nil
	default:
		return nil, fmt.Errorf("unknown backend %q: must be one of %v", kind, Kinds)
	}
}
