package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Calindra/solana-twitter/internal/identity"
)

// KeygenOptions holds flags for the keygen command.
type KeygenOptions struct {
	*RootOptions
	Out    string
	Scheme string
	Force  bool
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a signer keypair file",
		Long: `Generate a new keypair and write it to a file readable only by its owner.

The printed address is the public key that signs transactions and owns
posts and profiles.

Examples:
  chirp keygen --out alice.json
  chirp keygen --out carol.json --scheme sr25519`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "keypair file to write (required)")
	cmd.Flags().StringVar(&opts.Scheme, "scheme", string(identity.Ed25519), "signature scheme (ed25519|sr25519)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing file")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runKeygen(opts *KeygenOptions, cmd *cobra.Command) error {
	scheme, err := identity.ParseScheme(opts.Scheme)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --scheme", err)
	}

	if !opts.Force {
		if _, err := os.Stat(opts.Out); err == nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("%s already exists (use --force to overwrite)", opts.Out))
		}
	}

	kp, err := identity.Generate(scheme)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to generate keypair", err)
	}
	if err := kp.Save(opts.Out); err != nil {
		return WrapExitError(ExitCommandError, "failed to write keypair", err)
	}

	data := map[string]string{
		"address": kp.Public.String(),
		"scheme":  string(kp.Scheme),
		"path":    opts.Out,
	}
	return opts.formatter(cmd).Render(data, func(w io.Writer) {
		writeField(w, "address", kp.Public.String())
		writeField(w, "scheme", string(kp.Scheme))
		writeField(w, "path", opts.Out)
	})
}
