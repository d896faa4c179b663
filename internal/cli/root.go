package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Calindra/solana-twitter/internal/config"
	"github.com/Calindra/solana-twitter/internal/engine"
	"github.com/Calindra/solana-twitter/internal/identity"
	"github.com/Calindra/solana-twitter/internal/program"
	"github.com/Calindra/solana-twitter/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string // overrides the config file's database
	Keypair    string

	// Config is loaded in PersistentPreRunE.
	Config config.Config

	// Host overrides the wall clock (for testing).
	Host program.HostClock

	// Tokens overrides the UUIDv7 request token generator (for testing).
	Tokens engine.TokenGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the chirp CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chirp",
		Short: "chirp - posts and profiles on a local ledger",
		Long: `chirp keeps short posts and NFT-linked profiles as fixed-size records at
deterministic addresses. Every change is a signed transaction executed by a
single-writer ledger and recorded in an append-only log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			if opts.Database != "" {
				cfg.Database = opts.Database
			}
			opts.Config = cfg

			level := cfg.LogLevel
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", os.Getenv("CHIRP_CONFIG"), "path to CUE config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVarP(&opts.Keypair, "keypair", "k", os.Getenv("CHIRP_KEYPAIR"), "path to signer keypair file")

	cmd.AddCommand(NewKeygenCommand(opts))
	cmd.AddCommand(NewAirdropCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewPostCommand(opts))
	cmd.AddCommand(NewProfileCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewAddressCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
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

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// openStore opens the configured database.
func (o *RootOptions) openStore() (*store.Store, error) {
	st, err := store.Open(o.Config.Database, store.WithRent(o.Config.Rent))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// openEngine opens the store and an engine over it. The caller closes
// the returned store.
func (o *RootOptions) openEngine(ctx context.Context) (*engine.Engine, *store.Store, error) {
	st, err := o.openStore()
	if err != nil {
		return nil, nil, err
	}

	host := o.Host
	if host == nil {
		host = engine.SystemClock{}
	}
	var engOpts []engine.Option
	if o.Tokens != nil {
		engOpts = append(engOpts, engine.WithTokenGenerator(o.Tokens))
	}

	eng, err := engine.New(ctx, st, o.Config.ProgramID, host, engOpts...)
	if err != nil {
		st.Close()
		return nil, nil, WrapExitError(ExitCommandError, "failed to start engine", err)
	}
	return eng, st, nil
}

// signer loads the --keypair file.
func (o *RootOptions) signer() (*identity.Keypair, error) {
	if o.Keypair == "" {
		return nil, NewExitError(ExitCommandError, "a signer is required: pass --keypair or set CHIRP_KEYPAIR")
	}
	kp, err := identity.Load(o.Keypair)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load keypair", err)
	}
	return kp, nil
}

// program returns a read-only view of the configured program for
// derivations and record reads.
func (o *RootOptions) program() *program.Program {
	host := o.Host
	if host == nil {
		host = engine.SystemClock{}
	}
	return program.New(o.Config.ProgramID, host)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
