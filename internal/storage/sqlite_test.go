package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSQLite(t *testing.T) *SQLiteBackend {
	t.Helper()
	b := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, b.Initialize(context.Background()))
	t.Cleanup(func() { b.Close() })
	return b
}

func TestSQLite_CreatesDatabaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	b := NewSQLite(path)
	require.NoError(t, b.Initialize(context.Background()))
	defer b.Close()

	_, err := os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestSQLite_Pragmas(t *testing.T) {
	b := createTestSQLite(t)

	assert.NoError(t, b.verifyPragma("journal_mode", "delete"))
	assert.NoError(t, b.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, b.verifyPragma("user_version", "1"))
}

func TestSQLite_AssignsRowID(t *testing.T) {
	ctx := context.Background()
	b := createTestSQLite(t)

	require.NoError(t, b.Save(ctx, doc("todo", "buy milk")))
	first, err := b.FindByName(ctx, "todo")
	require.NoError(t, err)
	require.NotNil(t, first.ID)

	// INSERT OR REPLACE replaces the row, including its id.
	require.NoError(t, b.Save(ctx, doc("todo", "buy bread")))
	second, err := b.FindByName(ctx, "todo")
	require.NoError(t, err)
	require.NotNil(t, second.ID)
	assert.NotEqual(t, *first.ID, *second.ID)
}

func TestSQLite_MigratesDuplicateNames(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legacy.db")

	// A database from before names were unique.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		text TEXT NOT NULL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO documents (name, text) VALUES ('todo', 'old'), ('todo', 'new'), ('x', 'y')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	b := NewSQLite(path)
	require.NoError(t, b.Initialize(ctx))
	defer b.Close()

	got, err := b.FindByName(ctx, "todo")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Text)

	names, err := b.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"todo", "x"}, names)

	// Upsert now replaces instead of duplicating.
	require.NoError(t, b.Save(ctx, doc("todo", "newest")))
	names, err = b.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"todo", "x"}, names)
}

func TestSQLite_SealClosesDatabase(t *testing.T) {
	ctx := context.Background()
	b := createTestSQLite(t)
	require.NoError(t, b.Save(ctx, doc("todo", "buy milk")))

	require.NoError(t, b.Seal(ctx))
	assert.ErrorIs(t, b.Save(ctx, doc("todo", "x")), ErrNotReady)

	require.NoError(t, b.Unseal(ctx))
	got, err := b.FindByName(ctx, "todo")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Text)
}

func TestSQLite_MemoryHasNoArtifacts(t *testing.T) {
	assert.Nil(t, NewMemory().Artifacts())
	assert.Equal(t, []string{"x.db"}, NewSQLite("x.db").Artifacts())
}

func TestSQLite_CloseMultipleCalls(t *testing.T) {
	b := createTestSQLite(t)
	require.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}

func TestSQLite_InvalidPath(t *testing.T) {
	b := NewSQLite("/nonexistent/dir/test.db")
	assert.Error(t, b.Initialize(context.Background()))
}
