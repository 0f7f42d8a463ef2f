package cli

import (
	"io"
	"log/slog"

	"github.com/pyro-notes/pyro/internal/config"
)

// newLogger builds the slog logger for one CLI invocation. Logs go to w
// (stderr) so they never mix with command output. --verbose forces debug.
func newLogger(w io.Writer, cfg *config.Config, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}
