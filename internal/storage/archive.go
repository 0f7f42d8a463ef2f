package storage

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/pyro-notes/pyro/internal/document"
	"github.com/pyro-notes/pyro/internal/fsutil"
)

const (
	indexSuffix   = ".index.json"
	workDirSuffix = ".d"
	looseExt      = ".txt"
)

// ArchiveBackend stores documents as entries of a zip archive.
//
// Reads are served from loose files in the working directory. A save stages
// the loose file first and then commits the entry into a freshly written
// archive that replaces the old one by rename, so the archive is never torn.
// Seal flushes every loose file into the archive and removes the working
// directory; Unseal expands the archive back into it.
type ArchiveBackend struct {
	path      string
	indexPath string
	workDir   string
	perm      os.FileMode
}

// NewArchive creates a backend for the zip archive at path.
func NewArchive(path string) *ArchiveBackend {
	return &ArchiveBackend{
		path:      path,
		indexPath: path + indexSuffix,
		workDir:   path + workDirSuffix,
		perm:      0o600,
	}
}

// Initialize creates the empty archive and index if absent and expands the
// archive when the working directory is missing.
func (b *ArchiveBackend) Initialize(ctx context.Context) error {
	ok, err := fsutil.Exists(b.path)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if !ok {
		empty, err := buildArchive(nil)
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		if err := replaceFile(b.path, empty, b.perm); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
	}

	ok, err = fsutil.Exists(b.indexPath)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if !ok {
		if err := b.writeIndex(nil); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
	}

	ok, err = fsutil.Exists(b.workDir)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if !ok {
		if err := b.expand(); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
	}
	return nil
}

// Save stages doc as a loose file, commits it into the archive and records
// the name in the index. If the commit fails the loose file is restored.
func (b *ArchiveBackend) Save(ctx context.Context, doc document.Document) error {
	if err := b.ready(); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	loose := b.loosePath(doc.Name)
	previous, readErr := os.ReadFile(loose)
	hadPrevious := readErr == nil
	if readErr != nil && !os.IsNotExist(readErr) {
		return fmt.Errorf("save document: %w", readErr)
	}

	if err := replaceFile(loose, []byte(doc.Text), b.perm); err != nil {
		return fmt.Errorf("save document: stage: %w", err)
	}

	if err := b.commit(doc.Name, []byte(doc.Text)); err != nil {
		b.restoreLoose(loose, previous, hadPrevious)
		return fmt.Errorf("save document: commit: %w", err)
	}
	return nil
}

func (b *ArchiveBackend) FindByName(ctx context.Context, name string) (document.Document, error) {
	if err := b.ready(); err != nil {
		return document.Document{}, fmt.Errorf("find document: %w", err)
	}
	data, err := os.ReadFile(b.loosePath(name))
	if os.IsNotExist(err) {
		return document.Document{}, ErrNotFound
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("find document: %w", err)
	}
	return document.Document{Name: name, Text: string(data)}, nil
}

// ListNames reads the side index.
func (b *ArchiveBackend) ListNames(ctx context.Context) ([]string, error) {
	names, err := b.readIndex()
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	return names, nil
}

func (b *ArchiveBackend) Delete(ctx context.Context, name string) error {
	if err := b.ready(); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	names, err := b.readIndex()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if !contains(names, name) {
		return ErrNotFound
	}

	err = b.update(func(entries map[string][]byte) {
		delete(entries, name)
	}, remove(names, name))
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := os.Remove(b.loosePath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Artifacts returns the archive followed by its index.
func (b *ArchiveBackend) Artifacts() []string {
	return []string{b.path, b.indexPath}
}

// Seal writes every loose document into the archive, rewrites the index to
// match, and removes the working directory so no plaintext is left outside
// the artifacts.
func (b *ArchiveBackend) Seal(ctx context.Context) error {
	if err := b.ready(); err != nil {
		return fmt.Errorf("seal: %w", err)
	}

	names, err := b.readIndex()
	if err != nil {
		return fmt.Errorf("seal: %w", err)
	}

	entries := make(map[string][]byte, len(names))
	for _, name := range names {
		data, err := os.ReadFile(b.loosePath(name))
		if err != nil {
			return fmt.Errorf("seal: read %q: %w", name, err)
		}
		entries[name] = data
	}

	if err := b.writeArchive(entries); err != nil {
		return fmt.Errorf("seal: %w", err)
	}
	if err := b.writeIndex(names); err != nil {
		return fmt.Errorf("seal: %w", err)
	}
	if err := os.RemoveAll(b.workDir); err != nil {
		return fmt.Errorf("seal: remove working directory: %w", err)
	}
	return nil
}

// Unseal expands the archive into a fresh working directory.
func (b *ArchiveBackend) Unseal(ctx context.Context) error {
	if err := b.expand(); err != nil {
		return fmt.Errorf("unseal: %w", err)
	}
	return nil
}

func (b *ArchiveBackend) Close() error { return nil }

func (b *ArchiveBackend) ready() error {
	ok, err := fsutil.Exists(b.workDir)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotReady
	}
	return nil
}

// loosePath maps a name to a file name that is safe on every platform.
func (b *ArchiveBackend) loosePath(name string) string {
	return filepath.Join(b.workDir, base64.RawURLEncoding.EncodeToString([]byte(name))+looseExt)
}

func (b *ArchiveBackend) restoreLoose(loose string, previous []byte, hadPrevious bool) {
	if hadPrevious {
		_ = replaceFile(loose, previous, b.perm)
		return
	}
	_ = os.Remove(loose)
}

// commit replaces (or adds) one entry in the archive and records the name.
func (b *ArchiveBackend) commit(name string, text []byte) error {
	names, err := b.readIndex()
	if err != nil {
		return err
	}
	if !contains(names, name) {
		names = append(names, name)
	}

	return b.update(func(entries map[string][]byte) {
		entries[name] = text
	}, names)
}

// update rewrites the archive with mutate applied and then the index. The
// archive and index change together: if the index write fails, the previous
// archive is put back.
func (b *ArchiveBackend) update(mutate func(map[string][]byte), names []string) error {
	previous, err := os.ReadFile(b.path)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	entries, err := readArchive(b.path)
	if err != nil {
		return err
	}
	mutate(entries)

	if err := b.writeArchive(entries); err != nil {
		return err
	}
	if err := b.writeIndex(names); err != nil {
		if rerr := replaceFile(b.path, previous, b.perm); rerr != nil {
			return errors.Join(err, fmt.Errorf("restore archive: %w", rerr))
		}
		return err
	}
	return nil
}

// expand extracts the archive into a temporary directory and swaps it in
// as the working directory.
func (b *ArchiveBackend) expand() error {
	entries, err := readArchive(b.path)
	if err != nil {
		return err
	}

	staging := b.workDir + ".tmp-" + uuid.NewString()
	if err := os.MkdirAll(staging, 0o700); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	for name, data := range entries {
		path := filepath.Join(staging, base64.RawURLEncoding.EncodeToString([]byte(name))+looseExt)
		if err := os.WriteFile(path, data, b.perm); err != nil {
			return fmt.Errorf("expand %q: %w", name, err)
		}
	}

	if err := os.RemoveAll(b.workDir); err != nil {
		return fmt.Errorf("remove working directory: %w", err)
	}
	if err := os.Rename(staging, b.workDir); err != nil {
		return fmt.Errorf("install working directory: %w", err)
	}
	return nil
}

func (b *ArchiveBackend) writeArchive(entries map[string][]byte) error {
	data, err := buildArchive(entries)
	if err != nil {
		return err
	}
	return replaceFile(b.path, data, b.perm)
}

func (b *ArchiveBackend) readIndex() ([]string, error) {
	data, err := os.ReadFile(b.indexPath)
	if os.IsNotExist(err) {
		return nil, ErrNotReady
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (b *ArchiveBackend) writeIndex(names []string) error {
	if names == nil {
		names = []string{}
	}
	sort.Strings(names)
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	return replaceFile(b.indexPath, data, b.perm)
}

// buildArchive serializes entries into a zip, sorted by name.
func buildArchive(entries map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("create entry %q: %w", name, err)
		}
		if _, err := w.Write(entries[name]); err != nil {
			return nil, fmt.Errorf("write entry %q: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

// readArchive loads every entry of the zip at path.
func readArchive(path string) (map[string][]byte, error) {
	zr, err := zip.OpenReader(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotReady
	}
	// Entry names are document names, not paths; they are never joined
	// onto the file system, so non-local names are acceptable.
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && zr != nil) {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %q: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read entry %q: %w", f.Name, err)
		}
		entries[f.Name] = data
	}
	return entries, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func remove(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
