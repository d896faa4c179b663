package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/ir"
	"github.com/Calindra/solana-twitter/internal/server"
)

// ProfileOptions holds flags shared by the profile subcommands.
type ProfileOptions struct {
	*RootOptions
	TokenAccount string
	Profile      string
}

// NewProfileCommand creates the profile command group.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Link a profile to an asset you hold",
		Long: `Each signer has at most one profile, at an address derived from the
signer alone. A profile records the mint of an asset the signer proves
ownership of through a token account.`,
	}
	cmd.AddCommand(newProfileInitCommand(rootOpts))
	cmd.AddCommand(newProfileUpdateCommand(rootOpts))
	cmd.AddCommand(newProfileSetCommand(rootOpts))
	cmd.AddCommand(newProfileShowCommand(rootOpts))
	return cmd
}

func addTokenAccountFlag(cmd *cobra.Command, opts *ProfileOptions) {
	cmd.Flags().StringVar(&opts.TokenAccount, "token-account", "", "token account proving ownership of the asset (required)")
	_ = cmd.MarkFlagRequired("token-account")
}

func newProfileInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the signer's profile",
		Long: `Create the signer's profile linked to the mint held by --token-account.

Example:
  chirp profile init -k alice.json --token-account <account>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := parseAddressArg(opts.TokenAccount)
			if err != nil {
				return err
			}
			_, err = submit(cmd, opts.RootOptions, ir.InstrInitializeProfile, ir.Object{
				"token_account": ir.String(token.String()),
			})
			return err
		},
	}
	addTokenAccountFlag(cmd, opts)
	return cmd
}

func newProfileUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Relink the signer's profile to another asset",
		Long: `Relink a profile to the mint held by --token-account. The profile
defaults to the signer's own. Relinking to the asset already linked
is allowed and leaves the record unchanged.

Example:
  chirp profile update -k alice.json --token-account <account>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := parseAddressArg(opts.TokenAccount)
			if err != nil {
				return err
			}
			instrArgs := ir.Object{"token_account": ir.String(token.String())}
			if opts.Profile != "" {
				profile, err := parseAddressArg(opts.Profile)
				if err != nil {
					return err
				}
				instrArgs["profile"] = ir.String(profile.String())
			}
			_, err = submit(cmd, opts.RootOptions, ir.InstrUpdateProfile, instrArgs)
			return err
		},
	}
	addTokenAccountFlag(cmd, opts)
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "profile address (default: the signer's)")
	return cmd
}

func newProfileSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or relink the signer's profile",
		Long: `Link the signer's profile to the mint held by --token-account, creating
the profile if the signer has none yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := parseAddressArg(opts.TokenAccount)
			if err != nil {
				return err
			}
			kp, err := opts.signer()
			if err != nil {
				return err
			}
			exists, err := profileExists(cmd, opts.RootOptions, kp.Public)
			if err != nil {
				return err
			}

			instruction := ir.InstrInitializeProfile
			if exists {
				instruction = ir.InstrUpdateProfile
			}
			opts.formatter(cmd).VerboseLog("profile exists: %v, using %s", exists, instruction)
			_, err = submit(cmd, opts.RootOptions, instruction, ir.Object{
				"token_account": ir.String(token.String()),
			})
			return err
		},
	}
	addTokenAccountFlag(cmd, opts)
	return cmd
}

func profileExists(cmd *cobra.Command, opts *RootOptions, owner address.Address) (bool, error) {
	addr, err := opts.program().ProfileAddress(owner)
	if err != nil {
		return false, WrapExitError(ExitCommandError, "failed to derive profile address", err)
	}
	st, err := opts.openStore()
	if err != nil {
		return false, err
	}
	defer st.Close()

	_, ok, err := st.Load(cmdContext(cmd), addr)
	if err != nil {
		return false, WrapExitError(ExitCommandError, "failed to read profile", err)
	}
	return ok, nil
}

func newProfileShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [owner]",
		Short: "Read the profile of an owner",
		Long: `Read the profile of owner, or of the --keypair signer when no owner
is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var owner address.Address
			if len(args) == 1 {
				var err error
				if owner, err = parseAddressArg(args[0]); err != nil {
					return err
				}
			} else {
				kp, err := opts.signer()
				if err != nil {
					return err
				}
				owner = kp.Public
			}

			prog := opts.program()
			addr, err := prog.ProfileAddress(owner)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to derive profile address", err)
			}
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			profile, err := prog.GetProfile(cmdContext(cmd), st, addr)
			if err != nil {
				return recordError("profile", err)
			}
			view := server.NewProfileView(addr, profile)
			return opts.formatter(cmd).Render(view, func(w io.Writer) { writeProfileView(w, view) })
		},
	}
}

func writeProfileView(w io.Writer, v server.ProfileView) {
	writeField(w, "address", v.Address)
	writeField(w, "owner", v.Owner)
	writeField(w, "linked_asset", v.LinkedAsset)
}
