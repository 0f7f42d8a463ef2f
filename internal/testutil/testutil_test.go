package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyro-notes/pyro/internal/crypt"
)

func TestFixedOpIDGenerator(t *testing.T) {
	g := NewFixedOpIDGenerator("op-7")
	assert.Equal(t, "op-7", g.Generate())
	assert.Equal(t, "op-7", g.Generate())

	assert.Equal(t, "test-op", NewFixedOpIDGenerator("").Generate())
}

func TestSequenceOpIDGenerator(t *testing.T) {
	g := NewSequenceOpIDGenerator("op-1", "op-2")
	assert.Equal(t, "op-1", g.Generate())
	assert.Equal(t, "op-2", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestFastEngine_ReadableByDefaultEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	require.NoError(t, FastEngine().Encrypt("secret", []string{path}))
	require.NoError(t, crypt.NewFileEngine().Decrypt("secret", []string{path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	JSONLogger(&buf).Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)

	DiscardLogger().Error("dropped")
}
