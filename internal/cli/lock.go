package cli

import (
	"github.com/spf13/cobra"

	"github.com/pyro-notes/pyro/internal/docstore"
)

// CryptOptions holds flags for the lock and unlock commands.
type CryptOptions struct {
	*RootOptions
	Password string
}

// NewLockCommand creates the lock command.
func NewLockCommand(rootOpts *RootOptions) *cobra.Command {
	return newCryptCommand(rootOpts, true)
}

// NewUnlockCommand creates the unlock command.
func NewUnlockCommand(rootOpts *RootOptions) *cobra.Command {
	return newCryptCommand(rootOpts, false)
}

func newCryptCommand(rootOpts *RootOptions, locking bool) *cobra.Command {
	opts := &CryptOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Decrypt the document store",
		Long: `Decrypt the document store so documents can be read and changed.

The password comes from --password, $PYRO_PASSWORD, or a terminal prompt.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrypt(opts, locking, cmd)
		},
	}
	if locking {
		cmd.Use = "lock"
		cmd.Short = "Encrypt the document store"
		cmd.Long = `Encrypt the document store with a password.

While locked, documents can be neither read nor changed. The password comes
from --password, $PYRO_PASSWORD, or a terminal prompt (asked twice).`
	}

	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "store password")

	return cmd
}

func runCrypt(opts *CryptOptions, locking bool, cmd *cobra.Command) error {
	prompt := opts.Prompt
	if prompt == nil {
		prompt = terminalPrompt(cmd.ErrOrStderr())
	}
	password, err := resolvePassword(opts.Password, prompt, locking)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read password", err)
	}

	f := opts.formatter(cmd)
	return withStore(cmd.Context(), opts.RootOptions, f, func(st *docstore.Store) error {
		if _, err := st.Execute(cmd.Context(), docstore.Crypt{Password: password, Locking: locking}); err != nil {
			return err
		}
		action := "unlocked"
		if locking {
			action = "locked"
		}
		return f.Success(storeResult{Action: action, Path: st.Path(), State: st.State().String()})
	})
}
