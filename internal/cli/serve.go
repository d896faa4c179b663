package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Calindra/solana-twitter/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over HTTP",
		Long: `Start the single-writer engine and an HTTP API in front of it.

Signed transactions are accepted at POST /v1/transactions; records, slots,
balances and receipts are readable under /v1. The server stops on SIGINT
or SIGTERM.

Example:
  chirp serve --db chirp.db --listen 127.0.0.1:8899`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(cmdContext(cmd))
	defer cancel()

	eng, st, err := opts.openEngine(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	listen := opts.Config.Listen
	if opts.Listen != "" {
		listen = opts.Listen
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("ledger ready", "db", opts.Config.Database, "program_id", eng.ProgramID(), "seq", eng.Seq())
	if err := server.Serve(ctx, eng, listen); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}
