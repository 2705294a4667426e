package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pushtolive/ptl/cmd/ptl/commands"
	"github.com/pushtolive/ptl/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := commands.NewApp(commands.BuildInfo{Version: version, Commit: commit, Built: date})
	rootCmd := commands.NewRootCommand(app)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		logger := logging.New(os.Stderr, logging.WithColor(!app.Viper.GetBool("no-color") && logging.IsTerminal(os.Stderr)))
		logger.Critical(err.Error(), nil)
		os.Exit(1)
	}
}
