package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Calindra/solana-twitter/internal/address"
)

// NewAirdropCommand creates the airdrop command.
func NewAirdropCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "airdrop <address> <lamports>",
		Short: "Credit lamports to an address",
		Long: `Credit lamports to an address so it can pay record deposits.

Airdrops are host operations, not transactions, and do not appear in the
transaction log. A single airdrop is capped by airdrop_limit.

Example:
  chirp airdrop 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU 1000000000`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAirdrop(opts, args[0], args[1], cmd)
		},
	}
}

func runAirdrop(opts *RootOptions, addrArg, amountArg string, cmd *cobra.Command) error {
	addr, err := address.Parse(addrArg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid address", err)
	}
	lamports, err := strconv.ParseInt(amountArg, 10, 64)
	if err != nil || lamports <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("lamports must be a positive integer, got %q", amountArg))
	}
	if lamports > opts.Config.AirdropLimit {
		return NewExitError(ExitCommandError, fmt.Sprintf("airdrop of %d exceeds the limit of %d lamports", lamports, opts.Config.AirdropLimit))
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmdContext(cmd)
	if err := st.Airdrop(ctx, addr, lamports); err != nil {
		return WrapExitError(ExitCommandError, "airdrop failed", err)
	}
	balance, err := st.Balance(ctx, addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read balance", err)
	}

	data := map[string]any{"address": addr.String(), "lamports": balance}
	return opts.formatter(cmd).Render(data, func(w io.Writer) {
		writeField(w, "address", addr.String())
		writeField(w, "lamports", strconv.FormatInt(balance, 10))
	})
}
