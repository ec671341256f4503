package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/registry/cmd/app/commands"
	"github.com/allisson/registry/internal/app"
	"github.com/allisson/registry/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "bootstrap-token",
			Usage: "Issue a token through the bootstrap secret (operator recovery path)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "tenant",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Tenant slug (created on first use)",
				},
				&cli.StringFlag{
					Name:     "subject",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Subject the token authenticates as",
				},
				&cli.StringSliceFlag{
					Name:     "scope",
					Required: true,
					Usage:    "Scope in <repository-key>:<role> form (repeatable)",
				},
				&cli.IntFlag{
					Name:    "ttl",
					Value:   60,
					Usage:   "Token lifetime in minutes (5 to 1440)",
				},
				&cli.StringFlag{
					Name:     "secret",
					Required: true,
					Usage:    "Plaintext bootstrap secret",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunBootstrapToken(
					ctx,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("tenant"),
					cmd.String("subject"),
					cmd.StringSlice("scope"),
					int(cmd.Int("ttl")),
					cmd.String("secret"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "hash-bootstrap-secret",
			Usage: "Hash a bootstrap secret with Argon2id for BOOTSTRAP_SECRET_HASH",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "secret",
					Aliases: []string{"s"},
					Usage:   "Plaintext secret to hash (omit to generate a random one)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunHashBootstrapSecret(
					commands.DefaultIO().Writer,
					cmd.String("secret"),
				)
			},
		},
	}
}
