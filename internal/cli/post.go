package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/ir"
	"github.com/Calindra/solana-twitter/internal/program"
	"github.com/Calindra/solana-twitter/internal/server"
)

// PostOptions holds flags shared by the post subcommands.
type PostOptions struct {
	*RootOptions
	Nonce   string
	Topic   string
	Content string
}

// NewPostCommand creates the post command group.
func NewPostCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Create, edit, delete and read posts",
		Long: `Posts are fixed-size records holding a topic of at most 50 bytes and
content of at most 280 bytes. Each post lives at an address derived from
its author and a nonce; the author pays a deposit that comes back on delete.`,
	}
	cmd.AddCommand(newPostCreateCommand(rootOpts))
	cmd.AddCommand(newPostUpdateCommand(rootOpts))
	cmd.AddCommand(newPostDeleteCommand(rootOpts))
	cmd.AddCommand(newPostShowCommand(rootOpts))
	return cmd
}

func newPostCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PostOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new post",
		Long: `Publish a new post signed by --keypair.

The nonce picks the post's address. It defaults to a fresh UUIDv7 in hex,
so repeated calls create distinct posts.

Examples:
  chirp post create -k alice.json --topic solana --content "gm"
  chirp post create -k alice.json --nonce first --content "hello"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Nonce == "" {
				opts.Nonce = newNonce()
			}
			_, err := submit(cmd, opts.RootOptions, ir.InstrCreatePost, ir.Object{
				"nonce":   ir.String(opts.Nonce),
				"topic":   ir.String(opts.Topic),
				"content": ir.String(opts.Content),
			})
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Nonce, "nonce", "", "address nonce, at most 32 bytes (default: random)")
	cmd.Flags().StringVar(&opts.Topic, "topic", "", "post topic")
	cmd.Flags().StringVar(&opts.Content, "content", "", "post content")

	return cmd
}

func newPostUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PostOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <post>",
		Short: "Replace a post's topic and content",
		Long: `Replace the topic and content of a post. Only its author may do this.
The post keeps its original timestamp.

Example:
  chirp post update -k alice.json <post> --topic solana --content "gm again"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := parseAddressArg(args[0])
			if err != nil {
				return err
			}
			_, err = submit(cmd, opts.RootOptions, ir.InstrUpdatePost, ir.Object{
				"post":    ir.String(post.String()),
				"topic":   ir.String(opts.Topic),
				"content": ir.String(opts.Content),
			})
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Topic, "topic", "", "new topic")
	cmd.Flags().StringVar(&opts.Content, "content", "", "new content")

	return cmd
}

func newPostDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post>",
		Short: "Delete a post and reclaim its deposit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := parseAddressArg(args[0])
			if err != nil {
				return err
			}
			_, err = submit(cmd, rootOpts, ir.InstrDeletePost, ir.Object{
				"post": ir.String(post.String()),
			})
			return err
		},
	}
}

func newPostShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <post>",
		Short: "Read a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddressArg(args[0])
			if err != nil {
				return err
			}
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			post, err := opts.program().GetPost(cmdContext(cmd), st, addr)
			if err != nil {
				return recordError("post", err)
			}
			view := server.NewPostView(addr, post)
			return opts.formatter(cmd).Render(view, func(w io.Writer) { writePostView(w, view) })
		},
	}
}

func writePostView(w io.Writer, v server.PostView) {
	writeField(w, "address", v.Address)
	writeField(w, "author", v.Author)
	writeField(w, "timestamp", strconv.FormatInt(v.Timestamp, 10))
	writeField(w, "topic", v.Topic)
	writeField(w, "content", v.Content)
}

// newNonce returns a 32-character nonce, the longest a seed allows.
func newNonce() string {
	return strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
}

func parseAddressArg(s string) (address.Address, error) {
	addr, err := address.Parse(s)
	if err != nil {
		return address.Address{}, WrapExitError(ExitCommandError, "invalid address", err)
	}
	return addr, nil
}

// recordError maps a program error from a record read to an exit error.
func recordError(kind string, err error) error {
	if pe, ok := program.AsError(err); ok {
		return WrapExitError(ExitFailure, kind+" not readable", pe)
	}
	return WrapExitError(ExitCommandError, "failed to read "+kind, err)
}
