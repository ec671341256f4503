// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "registry",
		Usage:   "Access-control core for a multi-tenant artifact repository service",
		Version: version,
	}
	cmd.Commands = append(cmd.Commands, getSystemCommands(version)...)
	cmd.Commands = append(cmd.Commands, getAuthCommands()...)

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
