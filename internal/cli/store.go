package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pyro-notes/pyro/internal/docstore"
)

// openStore opens the configured document store, creating its parent
// directory if needed. Callers must Close the store.
func openStore(ctx context.Context, opts *RootOptions) (*docstore.Store, error) {
	kind, err := opts.Config.Kind()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid backend", err)
	}

	path := opts.Config.Store.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create store directory", err)
	}

	opts.Logger.Debug("opening store", "path", path, "backend", kind)
	st, err := docstore.Open(ctx, docstore.Options{
		Path:   path,
		Kind:   kind,
		Engine: opts.Engine,
		Logger: opts.Logger,
		OpIDs:  opts.OpIDs,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to open store %s", path), err)
	}
	return st, nil
}

// withStore opens the store, runs fn and closes the store. Errors from fn
// are store errors and are reported through f.
func withStore(ctx context.Context, opts *RootOptions, f *OutputFormatter, fn func(*docstore.Store) error) error {
	st, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.Logger.Error("error closing store", "error", closeErr)
		}
	}()
	f.VerboseLog("using %s store at %s (%s)", opts.Config.Store.Backend, st.Path(), st.State())

	if err := fn(st); err != nil {
		return f.StoreError(err)
	}
	return nil
}
