package cli

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Calindra/solana-twitter/internal/address"
)

// AddressResult is a derived record address.
type AddressResult struct {
	Address string `json:"address"`
	Bump    uint8  `json:"bump"`
}

// NewAddressCommand creates the address command group.
func NewAddressCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Derive record addresses without touching the ledger",
	}
	cmd.AddCommand(newAddressPostCommand(rootOpts))
	cmd.AddCommand(newAddressProfileCommand(rootOpts))
	return cmd
}

func newAddressPostCommand(opts *RootOptions) *cobra.Command {
	var author, nonce string
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Derive the address of a post from its author and nonce",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseAddressArg(author)
			if err != nil {
				return err
			}
			addr, bump, err := address.PostAddress(opts.Config.ProgramID, a, []byte(nonce))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to derive address", err)
			}
			return renderAddress(cmd, opts, AddressResult{Address: addr.String(), Bump: bump})
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "author address (required)")
	cmd.Flags().StringVar(&nonce, "nonce", "", "post nonce")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newAddressProfileCommand(opts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Derive the address of an owner's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := parseAddressArg(owner)
			if err != nil {
				return err
			}
			addr, bump, err := address.ProfileAddress(opts.Config.ProgramID, o)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to derive address", err)
			}
			return renderAddress(cmd, opts, AddressResult{Address: addr.String(), Bump: bump})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner address (required)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func renderAddress(cmd *cobra.Command, opts *RootOptions, r AddressResult) error {
	return opts.formatter(cmd).Render(r, func(w io.Writer) {
		writeField(w, "address", r.Address)
		writeField(w, "bump", strconv.Itoa(int(r.Bump)))
	})
}
