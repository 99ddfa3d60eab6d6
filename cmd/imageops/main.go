package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/imageops/cmd/imageops/cmd"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// register sigterm for graceful shutdown
	ctx, cnc := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cnc()
	go func() {
		defer cnc() // removes the signal handler so a second ctrl-c kills the process
		<-ctx.Done()
	}()

	root := cmd.NewRoot(ctx, cmd.BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
