package cli

import (
	"github.com/spf13/cobra"

	"github.com/pyro-notes/pyro/internal/docstore"
)

// NewFindCommand creates the find command.
func NewFindCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find <name>",
		Short: "Print a document",
		Long: `Print the text of the document called name.

Names are matched after normalization, so "Todo" and " todo " find the
same document. Reading fails while the store is locked.

Example:
  pyro find todo
  pyro find todo --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			return withStore(cmd.Context(), opts, f, func(st *docstore.Store) error {
				res, err := st.Execute(cmd.Context(), docstore.FindDocument{Name: args[0]})
				if err != nil {
					return err
				}
				return f.Success(documentResult{Doc: res.Document})
			})
		},
	}
}
