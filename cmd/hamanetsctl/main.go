// Command hamanetsctl inspects and edits a hamanets ledger from the
// terminal, working directly on the configured repository.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hamanets/internal/cli"
)

var version = "dev"

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, formatError(err.Error()))
		os.Exit(1)
	}
}
