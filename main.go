package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/melkeydev/demodb-query/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.NewRootCommand(afero.NewOsFs()).ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
