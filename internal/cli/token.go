package cli

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/identity"
	"github.com/Calindra/solana-twitter/internal/program"
	"github.com/Calindra/solana-twitter/internal/store"
)

// TokenOptions holds flags for the token create command.
type TokenOptions struct {
	*RootOptions
	Mint    string
	Owner   string
	Account string
	Amount  int64
}

// NewTokenCommand creates the token command group.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage token accounts that prove asset ownership",
	}
	cmd.AddCommand(newTokenCreateCommand(rootOpts))
	cmd.AddCommand(newTokenShowCommand(rootOpts))
	return cmd
}

func newTokenCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a token account holding an asset",
		Long: `Create a token account that shows --owner holds the asset --mint.
Profiles link to the mint of a token account their owner holds.

The owner defaults to the --keypair signer. The account address defaults
to a fresh random address.

Example:
  chirp token create --keypair alice.json --mint 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenCreate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mint, "mint", "", "asset mint address (required)")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "holder address (default: signer)")
	cmd.Flags().StringVar(&opts.Account, "account", "", "token account address (default: random)")
	cmd.Flags().Int64Var(&opts.Amount, "amount", 1, "amount held")
	_ = cmd.MarkFlagRequired("mint")

	return cmd
}

func runTokenCreate(opts *TokenOptions, cmd *cobra.Command) error {
	mint, err := address.Parse(opts.Mint)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --mint", err)
	}

	var owner address.Address
	if opts.Owner != "" {
		if owner, err = address.Parse(opts.Owner); err != nil {
			return WrapExitError(ExitCommandError, "invalid --owner", err)
		}
	} else {
		kp, err := opts.signer()
		if err != nil {
			return err
		}
		owner = kp.Public
	}

	var account address.Address
	if opts.Account != "" {
		if account, err = address.Parse(opts.Account); err != nil {
			return WrapExitError(ExitCommandError, "invalid --account", err)
		}
	} else {
		kp, err := identity.Generate(identity.Ed25519)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to generate account address", err)
		}
		account = kp.Public
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ta := store.TokenAccount{Address: account, Mint: mint, Owner: owner, Amount: opts.Amount}
	if err := st.CreateTokenAccount(cmdContext(cmd), ta); err != nil {
		if pe, ok := program.AsError(err); ok {
			return WrapExitError(ExitFailure, "token account not created", pe)
		}
		return WrapExitError(ExitCommandError, "failed to create token account", err)
	}

	return opts.formatter(cmd).Render(ta, func(w io.Writer) { writeTokenAccount(w, ta) })
}

func newTokenShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account>",
		Short: "Show a token account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := address.Parse(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid address", err)
			}
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ta, err := st.TokenAccount(cmdContext(cmd), account)
			if err != nil {
				if pe, ok := program.AsError(err); ok {
					return WrapExitError(ExitFailure, "token account not found", pe)
				}
				return WrapExitError(ExitCommandError, "failed to read token account", err)
			}
			return opts.formatter(cmd).Render(ta, func(w io.Writer) { writeTokenAccount(w, ta) })
		},
	}
}

func writeTokenAccount(w io.Writer, ta store.TokenAccount) {
	writeField(w, "account", ta.Address.String())
	writeField(w, "mint", ta.Mint.String())
	writeField(w, "owner", ta.Owner.String())
	writeField(w, "amount", strconv.FormatInt(ta.Amount, 10))
}
