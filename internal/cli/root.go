package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pyro-notes/pyro/internal/config"
	"github.com/pyro-notes/pyro/internal/crypt"
	"github.com/pyro-notes/pyro/internal/docstore"
	"github.com/pyro-notes/pyro/internal/storage"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	StorePath  string
	Backend    string

	// Config is the loaded configuration with flag overrides applied.
	// Set by the root command before any subcommand runs.
	Config *config.Config

	// Logger is built from Config and --verbose before any subcommand runs.
	Logger *slog.Logger

	// Engine overrides the encryption engine (for testing).
	// If nil, the store uses crypt.NewFileEngine().
	Engine crypt.Engine

	// OpIDs overrides the operation id generator (for testing).
	OpIDs docstore.OpIDGenerator

	// Prompt overrides the terminal password prompt (for testing).
	Prompt PasswordPrompt
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pyro CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pyro",
		Short: "pyro - encrypted notes",
		Long:  "A store of named text documents that can be locked (encrypted at rest) and unlocked for editing.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup(cmd.ErrOrStderr())
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default $"+config.EnvConfig+")")
	cmd.PersistentFlags().StringVar(&opts.StorePath, "store", "", "path to the document store (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", fmt.Sprintf("storage backend %v (overrides config)", storage.Kinds))

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewLockCommand(opts))
	cmd.AddCommand(NewUnlockCommand(opts))
	cmd.AddCommand(NewInvokeCommand(opts))

	return cmd
}

// setup loads the config file, applies flag overrides and builds the logger.
func (o *RootOptions) setup(logOut io.Writer) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	if o.Backend != "" {
		kind, err := storage.ParseKind(o.Backend)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --backend", err)
		}
		cfg.SetBackend(kind)
	}
	if o.StorePath != "" {
		cfg.Store.Path = o.StorePath
	}
	o.Config = cfg

	if o.Logger == nil {
		o.Logger = newLogger(logOut, cfg, o.Verbose)
	}
	return nil
}

// formatter returns an OutputFormatter for cmd using the global flags.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
