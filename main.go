package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/visor-cli/cmd"
)

// main is the entry point for the visor CLI application.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.ExecuteContext(ctx)
}
