// Package main provides the entry point for the zonewatch CLI tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zonewatch/zonewatch/pkg/logging"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := execute(ctx, os.Args[1:]); err != nil {
		logging.Error().Err(err).Msg("zonewatch failed")
		os.Exit(1)
	}
}
