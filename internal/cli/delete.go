package cli

import (
	"github.com/spf13/cobra"

	"github.com/pyro-notes/pyro/internal/docstore"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <name>",
		Short:         "Delete a document",
		Long:          "Delete the document called name. Deleting fails while the store is locked.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			return withStore(cmd.Context(), opts, f, func(st *docstore.Store) error {
				if _, err := st.Execute(cmd.Context(), docstore.DeleteDocument{Name: args[0]}); err != nil {
					return err
				}
				return f.Success(documentResult{Action: "deleted", Name: args[0]})
			})
		},
	}
}
