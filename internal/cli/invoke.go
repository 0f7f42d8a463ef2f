package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/pyro-notes/pyro/internal/docstore"
)

// invokeReply is the JSON answer to one invoked command. Exactly one field
// is set.
type invokeReply struct {
	Result *docstore.Result    `json:"result,omitempty"`
	Error  *docstore.UserError `json:"error,omitempty"`
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "invoke [command-json]",
		Short: "Run one JSON command against the store",
		Long: `Run one JSON command against the store and print a JSON reply.

The command is read from the argument or, if absent, from stdin. The reply is
{"result":{...}} on success or {"error":{"errorDisplayMsg":...}} on failure,
whatever --format says.

Example:
  pyro invoke '{"cmd":"saveDocument","docName":"todo","text":"buy milk"}'
  pyro invoke '{"cmd":"findDocument","docName":"todo"}'
  pyro invoke '{"cmd":"crypt","password":"secret","locking":true}'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeCommand(opts, args, cmd)
		},
	}
}

func invokeCommand(opts *RootOptions, args []string, cmd *cobra.Command) error {
	var data []byte
	if len(args) == 1 {
		data = []byte(args[0])
	} else {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read command", err)
		}
		data = b
	}

	st, err := openStore(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.Logger.Error("error closing store", "error", closeErr)
		}
	}()

	out := json.NewEncoder(cmd.OutOrStdout())

	c, err := docstore.DecodeCommand(data)
	if err == nil {
		var res docstore.Result
		res, err = st.Execute(cmd.Context(), c)
		if err == nil {
			return out.Encode(invokeReply{Result: &res})
		}
	}

	ue := docstore.NewUserError(err)
	if encErr := out.Encode(invokeReply{Error: &ue}); encErr != nil {
		return encErr
	}
	return &ExitError{Code: ExitFailure, Message: ue.ErrorDisplayMsg, Err: err, Reported: true}
}
