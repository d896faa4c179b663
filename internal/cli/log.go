package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Calindra/solana-twitter/internal/ir"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	After int64
	Limit int
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log [tx-id]",
		Short: "Read the transaction log",
		Long: `List receipts in execution order, or print one receipt by transaction id.

Failed instructions appear in the log with their error code; transactions
rejected before execution do not.

Examples:
  chirp log
  chirp log --after 40 --limit 10
  chirp log 3f2a...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runLogShow(opts, args[0], cmd)
			}
			return runLogList(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.After, "after", 0, "list receipts with seq greater than this")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum receipts to list (default 100)")

	return cmd
}

func runLogList(opts *LogOptions, cmd *cobra.Command) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	receipts, err := st.ListReceipts(cmdContext(cmd), opts.After, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read log", err)
	}

	return opts.formatter(cmd).Render(receipts, func(w io.Writer) {
		if len(receipts) == 0 {
			fmt.Fprintln(w, "No transactions.")
			return
		}
		for _, r := range receipts {
			fmt.Fprintf(w, "%6d  %-18s %-8s %s\n", r.Seq, r.Instruction, outcomeText(r), r.Signer)
		}
	})
}

func runLogShow(opts *LogOptions, id string, cmd *cobra.Command) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	receipt, ok, err := st.ReadReceipt(cmdContext(cmd), id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read log", err)
	}
	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("transaction %s not found", id))
	}
	return opts.formatter(cmd).Render(receipt, func(w io.Writer) { writeReceipt(w, receipt) })
}

func outcomeText(r ir.Receipt) string {
	if r.Succeeded() {
		return "ok"
	}
	return fmt.Sprintf("err %d", r.ErrorCode)
}
