package cli

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Calindra/solana-twitter/internal/layout"
	"github.com/Calindra/solana-twitter/internal/server"
)

// ShowResult is the JSON form of the show command.
type ShowResult struct {
	Address  string              `json:"address"`
	Lamports int64               `json:"lamports"`
	Account  *server.AccountView `json:"account,omitempty"`
	Post     *server.PostView    `json:"post,omitempty"`
	Profile  *server.ProfileView `json:"profile,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <address>",
		Short: "Inspect any address",
		Long: `Print the balance held at an address and, when a record lives there,
its slot and decoded contents.

Example:
  chirp show 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}
}

func runShow(opts *RootOptions, arg string, cmd *cobra.Command) error {
	addr, err := parseAddressArg(arg)
	if err != nil {
		return err
	}
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmdContext(cmd)
	result := ShowResult{Address: addr.String()}
	if result.Lamports, err = st.Balance(ctx, addr); err != nil {
		return WrapExitError(ExitCommandError, "failed to read balance", err)
	}

	slot, found, err := st.Load(ctx, addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read account", err)
	}
	if found {
		view := server.NewAccountView(addr, slot)
		result.Account = &view

		prog := opts.program()
		switch view.Kind {
		case layout.PostAccountName:
			if post, err := prog.GetPost(ctx, st, addr); err == nil {
				pv := server.NewPostView(addr, post)
				result.Post = &pv
			}
		case layout.ProfileAccountName:
			if profile, err := prog.GetProfile(ctx, st, addr); err == nil {
				pv := server.NewProfileView(addr, profile)
				result.Profile = &pv
			}
		}
	}

	return opts.formatter(cmd).Render(result, func(w io.Writer) {
		writeField(w, "address", result.Address)
		writeField(w, "lamports", strconv.FormatInt(result.Lamports, 10))
		if result.Account == nil {
			writeField(w, "account", "none")
			return
		}
		kind := result.Account.Kind
		if kind == "" {
			kind = "unknown"
		}
		writeField(w, "kind", kind)
		writeField(w, "owner", result.Account.Owner)
		writeField(w, "size", strconv.Itoa(result.Account.Size))
		writeField(w, "deposit", strconv.FormatInt(result.Account.Deposit, 10))
		writeField(w, "payer", result.Account.Payer)
		switch {
		case result.Post != nil:
			writeField(w, "author", result.Post.Author)
			writeField(w, "timestamp", strconv.FormatInt(result.Post.Timestamp, 10))
			writeField(w, "topic", result.Post.Topic)
			writeField(w, "content", result.Post.Content)
		case result.Profile != nil:
			writeField(w, "profile_of", result.Profile.Owner)
			writeField(w, "linked_asset", result.Profile.LinkedAsset)
		}
	})
}
