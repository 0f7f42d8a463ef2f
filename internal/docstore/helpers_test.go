package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pyro-notes/pyro/internal/storage"
	"github.com/pyro-notes/pyro/internal/testutil"
)

// createTestStore opens a ready store of the given kind in a temp dir.
func createTestStore(t testing.TB, kind storage.Kind) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "documents."+string(kind))
	return openTestStore(t, kind, path)
}

func openTestStore(t testing.TB, kind storage.Kind, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{
		Path:   path,
		Kind:   kind,
		Engine: testutil.FastEngine(),
		Logger: testutil.DiscardLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, s.EnsureReady(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

// requireCode fails the test unless err carries the given code.
func requireCode(t testing.TB, err error, code ErrorCode) {
	t.Helper()
	require.Error(t, err)
	got, ok := CodeOf(err)
	require.True(t, ok, "expected *Error, got %T: %v", err, err)
	require.Equal(t, code, got, "error: %v", err)
}

// fakeEngine is a scripted crypt.Engine.
type fakeEngine struct {
	headerPresent bool
	headerErr     error
	encryptErr    error
	decryptErr    error

	encrypted [][]string
}

func (f *fakeEngine) HeaderPresent(path string) (bool, error) {
	return f.headerPresent, f.headerErr
}

func (f *fakeEngine) Encrypt(password string, paths []string) error {
	f.encrypted = append(f.encrypted, paths)
	return f.encryptErr
}

func (f *fakeEngine) Decrypt(password string, paths []string) error {
	return f.decryptErr
}

var errDiskFull = errors.New("disk full")
