// Command chirp runs the post and profile ledger.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Calindra/solana-twitter/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
