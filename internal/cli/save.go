package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pyro-notes/pyro/internal/docstore"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	File string
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <name> [text]",
		Short: "Create or replace a document",
		Long: `Create or replace the document called name.

The text comes from the second argument, from --file, or from stdin.
Saving fails while the store is locked.

Example:
  pyro save todo "buy milk"
  pyro save journal --file entry.txt
  echo "buy milk" | pyro save todo`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveDocument(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read the document text from a file")

	return cmd
}

func saveDocument(opts *SaveOptions, args []string, cmd *cobra.Command) error {
	text, err := readText(opts, args, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read document text", err)
	}

	f := opts.formatter(cmd)
	return withStore(cmd.Context(), opts.RootOptions, f, func(st *docstore.Store) error {
		if _, err := st.Execute(cmd.Context(), docstore.SaveDocument{Name: args[0], Text: text}); err != nil {
			return err
		}
		return f.Success(documentResult{Action: "saved", Name: args[0]})
	})
}

func readText(opts *SaveOptions, args []string, stdin io.Reader) (string, error) {
	switch {
	case len(args) == 2 && opts.File != "":
		return "", fmt.Errorf("give the text as an argument or with --file, not both")
	case len(args) == 2:
		return args[1], nil
	case opts.File != "":
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
