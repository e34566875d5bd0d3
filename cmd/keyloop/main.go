// Package main is the entry point for keyloop.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/keyloop/internal/cli"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := cli.Execute(ctx, version); err != nil {
		return 1
	}
	return 0
}
