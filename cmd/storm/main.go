// Command storm searches Korean corporate disclosure reports.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/leh60245/enterprise-storm/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetInitializer(initialise)

	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
