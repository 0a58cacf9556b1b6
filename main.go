// ./main.go
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/halcyondale/deskpilot-cli/cmd"
	"github.com/halcyondale/deskpilot-cli/internal/observability"
)

// main is the entry point for the deskpilot CLI application.
func main() {
	// A signal cancels the context; in-flight actions observe it and stop.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer observability.Sync()

	cmd.Execute(ctx)
}
