// Command shotctl analyzes, simulates and trains on shots from the command
// line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/railshot/internal/cli"
	"github.com/okian/railshot/pkg/logger"
)

func main() {
	if err := logger.InitWithWriter(os.Stderr, false); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(cli.ExitFailure)
	}
	_ = logger.SetLevelString("warn")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("shotctl: " + err.Error() + "\n")
		stop()
		os.Exit(cli.ExitCode(err))
	}
}
