package testutil

import (
	"io"
	"log/slog"

	"github.com/pyro-notes/pyro/internal/crypt"
)

// FastEngine returns a FileEngine with a cheap scrypt cost. The file format
// records the cost, so its output is still readable by crypt.NewFileEngine.
func FastEngine() *crypt.FileEngine {
	return &crypt.FileEngine{LogN: 10, R: 8, P: 1, Perm: 0o600}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// JSONLogger returns a debug-level logger writing JSON records to w, for
// tests that assert on log attributes.
func JSONLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
