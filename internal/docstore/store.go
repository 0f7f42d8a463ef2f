package docstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/pyro-notes/pyro/internal/crypt"
	"github.com/pyro-notes/pyro/internal/document"
	"github.com/pyro-notes/pyro/internal/storage"
)

// Options configures Open.
type Options struct {
	// Path is the primary artifact path. Required unless Backend is set.
	Path string

	// Kind selects the backend strategy. Defaults to storage.KindSQLite.
	Kind storage.Kind

	// Backend overrides Path and Kind.
	Backend storage.Backend

	// Engine defaults to crypt.NewFileEngine().
	Engine crypt.Engine

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// OpIDs defaults to UUIDv7Generator.
	OpIDs OpIDGenerator
}

// Store is the handle to one document store. Exactly one Store should be
// open against a given artifact at a time.
type Store struct {
	mu sync.Mutex

	backend storage.Backend
	engine  crypt.Engine
	index   *document.NameIndex
	state   LockState

	// ready is true once the backend is initialized and the index loaded.
	// It is cleared while the backend is sealed.
	ready bool

	logger *slog.Logger
	opIDs  OpIDGenerator
}

// Open creates a store bound to a physical artifact and probes its lock
// state. Documents are not loaded until EnsureReady or the first operation.
//
// A failed header probe is a hard error: a store whose state is unknown
// could otherwise write plaintext over ciphertext.
func Open(ctx context.Context, opts Options) (*Store, error) {
	backend := opts.Backend
	if backend == nil {
		kind := opts.Kind
		if kind == "" {
			kind = storage.KindSQLite
		}
		b, err := storage.New(kind, opts.Path)
		if err != nil {
			return nil, storageError("open store", err)
		}
		backend = b
	}

	engine := opts.Engine
	if engine == nil {
		engine = crypt.NewFileEngine()
	}

	s := newStore(backend, engine, opts.Logger, opts.OpIDs)

	// Any encrypted artifact means Locked, so a set left half-encrypted is
	// still recovered by Unlock.
	for _, artifact := range backend.Artifacts() {
		encrypted, err := engine.HeaderPresent(artifact)
		if err != nil {
			return nil, &Error{Code: CodeCryptError, Message: "probe encryption header failed", Err: err}
		}
		if encrypted {
			s.state = Locked
			break
		}
	}

	s.logger.Debug("store opened", "path", s.Path(), "state", s.state.String())
	return s, nil
}

// OpenInMemory creates an ephemeral store. Lock and Unlock fail with
// CodeNoPhysicalArtifact.
func OpenInMemory(ctx context.Context, logger *slog.Logger) (*Store, error) {
	return Open(ctx, Options{Backend: storage.NewMemory(), Logger: logger})
}

func newStore(backend storage.Backend, engine crypt.Engine, logger *slog.Logger, opIDs OpIDGenerator) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if opIDs == nil {
		opIDs = UUIDv7Generator{}
	}
	return &Store{
		backend: backend,
		engine:  engine,
		index:   document.NewNameIndex(),
		state:   Unlocked,
		logger:  logger,
		opIDs:   opIDs,
	}
}

// State returns the current lock state.
func (s *Store) State() LockState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Path returns the primary artifact path, or "" for an in-memory store.
func (s *Store) Path() string {
	if artifacts := s.backend.Artifacts(); len(artifacts) > 0 {
		return artifacts[0]
	}
	return ""
}

// EnsureReady initializes the backend and loads the name index.
// It is idempotent and a no-op on the backend while Locked.
func (s *Store) EnsureReady(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureReady(ctx)
}

func (s *Store) ensureReady(ctx context.Context) error {
	if s.state == Locked || s.ready {
		return nil
	}
	if err := s.backend.Initialize(ctx); err != nil {
		return storageError("initialize store", err)
	}
	names, err := s.backend.ListNames(ctx)
	if err != nil {
		return storageError("load document names", err)
	}
	s.index.Reset(names)
	s.ready = true
	return nil
}

// SaveDocument creates or replaces the document named name.
func (s *Store) SaveDocument(ctx context.Context, name, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.With("op_id", s.opIDs.Generate(), "op", "save")

	if s.state == Locked {
		log.Warn("save refused: store is locked")
		return newError(CodeSavedWhenLocked, "cannot save while documents are locked")
	}

	doc, err := document.New(nil, name, text)
	if err != nil {
		return invalidNameError(err)
	}

	if err := s.ensureReady(ctx); err != nil {
		log.Error("store not ready", "error", err)
		return err
	}

	if err := s.backend.Save(ctx, doc); err != nil {
		log.Error("save failed", "name", doc.Name, "error", err)
		return storageError("save document", err)
	}
	s.index.Insert(doc.Name)

	log.Info("document saved", "name", doc.Name, "bytes", len(doc.Text))
	return nil
}

// FindDocument returns the document named name.
func (s *Store) FindDocument(ctx context.Context, name string) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.With("op_id", s.opIDs.Generate(), "op", "find")

	if s.state == Locked {
		return document.Document{}, newError(CodeLocked, "cannot read while documents are locked")
	}

	normalized, err := document.NormalizeName(name)
	if err != nil {
		return document.Document{}, invalidNameError(err)
	}

	if err := s.ensureReady(ctx); err != nil {
		log.Error("store not ready", "error", err)
		return document.Document{}, err
	}

	doc, err := s.backend.FindByName(ctx, normalized)
	if errors.Is(err, storage.ErrNotFound) {
		log.Debug("document not found", "name", normalized)
		return document.Document{}, notFoundError(normalized)
	}
	if err != nil {
		log.Error("find failed", "name", normalized, "error", err)
		return document.Document{}, storageError("find document", err)
	}

	log.Debug("document found", "name", normalized)
	return doc, nil
}

// ListDocumentNames returns a sorted snapshot of the name index. While
// Locked it returns the last snapshot taken while Unlocked. The snapshot is
// held in memory only: a process that opens an already locked store has no
// snapshot and lists nothing until Unlock.
func (s *Store) ListDocumentNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Unlocked && !s.ready {
		if err := s.ensureReady(ctx); err != nil {
			return nil, err
		}
	}
	return s.index.All(), nil
}

// DeleteDocument removes the document named name from the backend and the
// index.
func (s *Store) DeleteDocument(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.With("op_id", s.opIDs.Generate(), "op", "delete")

	if s.state == Locked {
		log.Warn("delete refused: store is locked")
		return newError(CodeSavedWhenLocked, "cannot delete while documents are locked")
	}

	normalized, err := document.NormalizeName(name)
	if err != nil {
		return invalidNameError(err)
	}

	if err := s.ensureReady(ctx); err != nil {
		log.Error("store not ready", "error", err)
		return err
	}

	err = s.backend.Delete(ctx, normalized)
	if errors.Is(err, storage.ErrNotFound) {
		return notFoundError(normalized)
	}
	if err != nil {
		log.Error("delete failed", "name", normalized, "error", err)
		return storageError("delete document", err)
	}
	s.index.Remove(normalized)

	log.Info("document deleted", "name", normalized)
	return nil
}

// Lock encrypts every artifact with password.
func (s *Store) Lock(ctx context.Context, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.With("op_id", s.opIDs.Generate(), "op", "lock")

	artifacts := s.backend.Artifacts()
	if len(artifacts) == 0 {
		return newError(CodeNoPhysicalArtifact, "in-memory store cannot be locked")
	}
	if s.state == Locked {
		return newError(CodeAlreadyLocked, "documents are already locked")
	}

	// The artifacts must exist before they can be encrypted.
	if err := s.ensureReady(ctx); err != nil {
		log.Error("store not ready", "error", err)
		return err
	}

	if err := s.backend.Seal(ctx); err != nil {
		log.Error("seal failed", "error", err)
		s.recoverUnseal(ctx, log)
		return storageError("flush documents", err)
	}

	log.Info("encrypting artifacts", "artifacts", len(artifacts))
	if err := s.engine.Encrypt(password, artifacts); err != nil {
		log.Error("encryption failed", "error", err)
		s.recoverUnseal(ctx, log)
		return cryptError(err)
	}

	s.state = Locked
	s.ready = false
	log.Info("store locked", "path", artifacts[0], "documents", s.index.Len())
	return nil
}

// Unlock decrypts every artifact with password and reloads the name index.
func (s *Store) Unlock(ctx context.Context, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.With("op_id", s.opIDs.Generate(), "op", "unlock")

	artifacts := s.backend.Artifacts()
	if len(artifacts) == 0 {
		return newError(CodeNoPhysicalArtifact, "in-memory store cannot be unlocked")
	}
	if s.state == Unlocked {
		return newError(CodeNotEncrypted, "documents are not encrypted")
	}

	log.Info("decrypting artifacts", "artifacts", len(artifacts))
	if err := s.engine.Decrypt(password, artifacts); err != nil {
		log.Warn("decryption failed", "error", err)
		return cryptError(err)
	}

	// The artifacts are plaintext from here on, whatever happens next.
	s.state = Unlocked

	if err := s.backend.Unseal(ctx); err != nil {
		log.Error("unseal failed", "error", err)
		return storageError("expand documents", err)
	}
	if err := s.ensureReady(ctx); err != nil {
		log.Error("store not ready", "error", err)
		return err
	}

	log.Info("store unlocked", "path", artifacts[0], "documents", s.index.Len())
	return nil
}

// recoverUnseal restores the working state after a failed lock attempt.
func (s *Store) recoverUnseal(ctx context.Context, log *slog.Logger) {
	if err := s.backend.Unseal(ctx); err != nil {
		log.Error("unseal after failed lock", "error", err)
		s.ready = false
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Close(); err != nil {
		return storageError("close store", err)
	}
	return nil
}

// cryptError maps engine errors onto store codes.
func cryptError(err error) *Error {
	switch {
	case errors.Is(err, crypt.ErrWrongPassword):
		return &Error{Code: CodeWrongPassword, Message: "wrong password", Err: err}
	case errors.Is(err, crypt.ErrNotEncrypted):
		return &Error{Code: CodeNotEncrypted, Message: "documents are not encrypted", Err: err}
	case errors.Is(err, crypt.ErrAlreadyEncrypted):
		return &Error{Code: CodeAlreadyLocked, Message: "documents are already encrypted", Err: err}
	default:
		return &Error{Code: CodeCryptError, Message: "encryption engine failed", Err: err}
	}
}
