package storage

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestArchive(t *testing.T) (*ArchiveBackend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "documents.zip")
	b := NewArchive(path)
	require.NoError(t, b.Initialize(context.Background()))
	return b, path
}

func zipEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(data)
	}
	return out
}

func TestArchive_InitializeCreatesLayout(t *testing.T) {
	_, path := createTestArchive(t)

	assert.FileExists(t, path)
	assert.FileExists(t, path+indexSuffix)
	assert.DirExists(t, path+workDirSuffix)
	assert.Empty(t, zipEntries(t, path))

	data, err := os.ReadFile(path + indexSuffix)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestArchive_SaveCommitsEntry(t *testing.T) {
	ctx := context.Background()
	b, path := createTestArchive(t)

	require.NoError(t, b.Save(ctx, doc("todo", "buy milk")))
	require.NoError(t, b.Save(ctx, doc("notes/work", "standup at 10")))

	assert.Equal(t, map[string]string{
		"todo":       "buy milk",
		"notes/work": "standup at 10",
	}, zipEntries(t, path))

	var names []string
	data, err := os.ReadFile(path + indexSuffix)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &names))
	assert.Equal(t, []string{"notes/work", "todo"}, names)
}

func TestArchive_FailedCommitRestoresStagedDocument(t *testing.T) {
	ctx := context.Background()
	b, path := createTestArchive(t)
	require.NoError(t, b.Save(ctx, doc("todo", "buy milk")))

	// A torn archive makes the commit step fail.
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	err := b.Save(ctx, doc("todo", "buy bread"))
	require.Error(t, err)

	got, err := b.FindByName(ctx, "todo")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Text)

	err = b.Save(ctx, doc("fresh", "never committed"))
	require.Error(t, err)
	_, err = b.FindByName(ctx, "fresh")
	assert.ErrorIs(t, err, ErrNotFound)
}

// failWritesTo makes every write of path fail until the test ends.
func failWritesTo(t *testing.T, path string) {
	t.Helper()
	prev := replaceFile
	replaceFile = func(name string, data []byte, perm os.FileMode) error {
		if name == path {
			return errors.New("disk full")
		}
		return prev(name, data, perm)
	}
	t.Cleanup(func() { replaceFile = prev })
}

func readNames(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path + indexSuffix)
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal(data, &names))
	return names
}

func TestArchive_FailedIndexWriteRestoresArchive(t *testing.T) {
	ctx := context.Background()
	b, path := createTestArchive(t)
	require.NoError(t, b.Save(ctx, doc("todo", "buy milk")))
	failWritesTo(t, path+indexSuffix)

	require.Error(t, b.Save(ctx, doc("fresh", "never indexed")))

	assert.Equal(t, map[string]string{"todo": "buy milk"}, zipEntries(t, path))
	assert.Equal(t, []string{"todo"}, readNames(t, path))
	_, err := b.FindByName(ctx, "fresh")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchive_FailedIndexWriteKeepsDeletedEntry(t *testing.T) {
	ctx := context.Background()
	b, path := createTestArchive(t)
	require.NoError(t, b.Save(ctx, doc("todo", "buy milk")))
	failWritesTo(t, path+indexSuffix)

	require.Error(t, b.Delete(ctx, "todo"))

	assert.Equal(t, map[string]string{"todo": "buy milk"}, zipEntries(t, path))
	assert.Equal(t, []string{"todo"}, readNames(t, path))
	got, err := b.FindByName(ctx, "todo")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Text)
}

func TestArchive_SealRemovesWorkingDirectory(t *testing.T) {
	ctx := context.Background()
	b, path := createTestArchive(t)
	require.NoError(t, b.Save(ctx, doc("todo", "buy milk")))

	require.NoError(t, b.Seal(ctx))
	assert.NoDirExists(t, path+workDirSuffix)
	assert.Equal(t, map[string]string{"todo": "buy milk"}, zipEntries(t, path))

	_, err := b.FindByName(ctx, "todo")
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, b.Save(ctx, doc("todo", "x")), ErrNotReady)

	require.NoError(t, b.Unseal(ctx))
	got, err := b.FindByName(ctx, "todo")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Text)
}

func TestArchive_SealFlushesLooseEdits(t *testing.T) {
	ctx := context.Background()
	b, path := createTestArchive(t)
	require.NoError(t, b.Save(ctx, doc("todo", "buy milk")))

	// Loose files are the working copy; a full flush writes them back.
	require.NoError(t, os.WriteFile(b.loosePath("todo"), []byte("edited"), 0o600))
	require.NoError(t, b.Seal(ctx))

	assert.Equal(t, map[string]string{"todo": "edited"}, zipEntries(t, path))
}

func TestArchive_Artifacts(t *testing.T) {
	b := NewArchive("/data/notes.zip")
	assert.Equal(t, []string{"/data/notes.zip", "/data/notes.zip.index.json"}, b.Artifacts())
}

func TestArchive_ExpandsExistingArchive(t *testing.T) {
	ctx := context.Background()
	b, path := createTestArchive(t)
	require.NoError(t, b.Save(ctx, doc("todo", "buy milk")))
	require.NoError(t, os.RemoveAll(path+workDirSuffix))

	b2 := NewArchive(path)
	require.NoError(t, b2.Initialize(ctx))

	got, err := b2.FindByName(ctx, "todo")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Text)
}
