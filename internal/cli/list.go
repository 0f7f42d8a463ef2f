package cli

import (
	"github.com/spf13/cobra"

	"github.com/pyro-notes/pyro/internal/docstore"
)

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List document names",
		Long:          "List the names of all documents, sorted. A locked store lists nothing.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			return withStore(cmd.Context(), opts, f, func(st *docstore.Store) error {
				res, err := st.Execute(cmd.Context(), docstore.ListDocumentNames{})
				if err != nil {
					return err
				}
				names := res.Names
				if names == nil {
					names = []string{}
				}
				return f.Success(nameList{Names: names})
			})
		},
	}
}
