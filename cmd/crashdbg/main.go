package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wnxd/crashdbg/internal/commands"
	"github.com/wnxd/crashdbg/internal/logger"
)

const (
	errCommandError = 1
)

func main() {
	log := logger.New("crashdbg")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := commands.NewRootCommand(log)
	err := root.ExecuteContext(ctx)
	if err != nil {
		log.Error(err, "command failed")
		log.Flush()
		stop()
		os.Exit(errCommandError)
	}
	log.Flush()
}
