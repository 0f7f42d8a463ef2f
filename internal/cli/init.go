package cli

import (
	"github.com/spf13/cobra"

	"github.com/pyro-notes/pyro/internal/docstore"
)

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the document store if it does not exist",
		Long: `Create the configured document store if it does not exist.

Running init on an existing store only reports its lock state.

Example:
  pyro init --backend archive --store ~/notes/documents.zip`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			return withStore(cmd.Context(), opts, f, func(st *docstore.Store) error {
				if err := st.EnsureReady(cmd.Context()); err != nil {
					return err
				}
				return f.Success(storeResult{
					Action:  "initialized",
					Path:    st.Path(),
					Backend: opts.Config.Store.Backend,
					State:   st.State().String(),
				})
			})
		},
	}
}
