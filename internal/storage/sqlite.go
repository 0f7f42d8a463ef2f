package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pyro-notes/pyro/internal/document"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (name not unique in databases from older releases)
// 1 - UNIQUE index on documents.name
const currentSchemaVersion = 1

const memoryDSN = ":memory:"

// SQLiteBackend stores documents in a single SQLite table.
//
// The database runs with journal_mode=DELETE so that, once closed, all of its
// data lives in the one file returned by Artifacts.
type SQLiteBackend struct {
	path   string
	memory bool
	db     *sql.DB
}

// NewSQLite creates a backend for the database file at path.
// The file is not opened until Initialize.
func NewSQLite(path string) *SQLiteBackend {
	return &SQLiteBackend{path: path}
}

// NewMemory creates an ephemeral backend backed by an in-memory database.
// Its contents are lost on Close or Seal.
func NewMemory() *SQLiteBackend {
	return &SQLiteBackend{path: memoryDSN, memory: true}
}

// Initialize opens the database, applies pragmas and the schema.
// This function is idempotent.
func (b *SQLiteBackend) Initialize(ctx context.Context) error {
	if b.db != nil {
		return applySchema(ctx, b.db)
	}

	db, err := sql.Open("sqlite3", b.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection keeps an in-memory database alive and avoids
	// SQLITE_BUSY between writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	b.db = db
	return nil
}

// Save upserts doc. INSERT OR REPLACE is a single statement, so a failure
// leaves the previous row intact.
func (b *SQLiteBackend) Save(ctx context.Context, doc document.Document) error {
	if b.db == nil {
		return fmt.Errorf("save document: %w", ErrNotReady)
	}
	_, err := b.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (name, text) VALUES (?, ?)`,
		doc.Name, doc.Text,
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// FindByName returns the first row whose name equals name.
func (b *SQLiteBackend) FindByName(ctx context.Context, name string) (document.Document, error) {
	if b.db == nil {
		return document.Document{}, fmt.Errorf("find document: %w", ErrNotReady)
	}

	var (
		id  int64
		doc document.Document
	)
	err := b.db.QueryRowContext(ctx, `
		SELECT id, name, text FROM documents
		WHERE name = ?
		ORDER BY id ASC
		LIMIT 1
	`, name).Scan(&id, &doc.Name, &doc.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Document{}, ErrNotFound
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("find document: %w", err)
	}
	return doc.WithID(id), nil
}

// ListNames returns all names ordered by name.
func (b *SQLiteBackend) ListNames(ctx context.Context) ([]string, error) {
	if b.db == nil {
		return nil, fmt.Errorf("list names: %w", ErrNotReady)
	}

	rows, err := b.db.QueryContext(ctx, `SELECT name FROM documents ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list names: scan: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	return names, nil
}

// Delete removes the row named name.
func (b *SQLiteBackend) Delete(ctx context.Context, name string) error {
	if b.db == nil {
		return fmt.Errorf("delete document: %w", ErrNotReady)
	}

	result, err := b.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Artifacts returns the database file, or nil for an in-memory database.
func (b *SQLiteBackend) Artifacts() []string {
	if b.memory {
		return nil
	}
	return []string{b.path}
}

// Seal closes the database so the file can be rewritten.
func (b *SQLiteBackend) Seal(ctx context.Context) error {
	return b.Close()
}

// Unseal reopens the database.
func (b *SQLiteBackend) Unseal(ctx context.Context) error {
	return b.Initialize(ctx)
}

// Close closes the database connection. Calling Close more than once is safe.
func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = DELETE",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(ctx, db); err != nil {
			return err
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 enforces unique names on databases written before the
// constraint existed. Duplicates keep the most recent row.
func migrateToV1(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate to v1: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM documents
		WHERE id NOT IN (SELECT MAX(id) FROM documents GROUP BY name)
	`); err != nil {
		return fmt.Errorf("migrate to v1: dedupe: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_name_unique
		ON documents(name)
	`); err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate to v1: commit: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (b *SQLiteBackend) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := b.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
