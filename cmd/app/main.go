// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/keygateio/keygate/cmd/app/commands"
	"github.com/keygateio/keygate/internal/app"
	"github.com/keygateio/keygate/internal/config"
)

const version = "1.0.0"

// withContainer runs fn with a fresh DI container and shuts it down afterwards.
func withContainer(ctx context.Context, fn func(ctx context.Context, container *app.Container, logger *slog.Logger) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer func() {
		if err := container.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown container", slog.Any("error", err))
		}
	}()

	return fn(ctx, container, logger)
}

func main() {
	cmd := &cli.Command{
		Name:    "keygate",
		Usage:   "Machine-to-machine token authority",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "worker",
				Usage: "Start the outbox worker that finalizes secret rotations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunWorker(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-workspace",
				Usage: "Create a new workspace with its data encryption key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Human-readable workspace name",
					},
					&cli.StringFlag{
						Name:    "plan",
						Aliases: []string{"p"},
						Value:   "free",
						Usage:   "Workspace plan: 'free' or 'pro'",
					},
					&cli.IntFlag{
						Name:    "quota",
						Aliases: []string{"q"},
						Value:   0,
						Usage:   "Monthly token quota (0 for unlimited)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container, logger *slog.Logger) error {
						workspaceUseCase, err := container.WorkspaceUseCase()
						if err != nil {
							return err
						}
						return commands.RunCreateWorkspace(
							ctx,
							workspaceUseCase,
							logger,
							cmd.String("name"),
							cmd.String("plan"),
							int64(cmd.Int("quota")),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "create-api",
				Usage: "Create a new API with its initial signing secret",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "workspace-id",
						Aliases:  []string{"w"},
						Required: true,
						Usage:    "Workspace ID (UUID)",
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Human-readable API name",
					},
					&cli.StringFlag{
						Name:    "algorithm",
						Aliases: []string{"alg"},
						Value:   "hsa256",
						Usage:   "Signing algorithm: 'hsa256' or 'rsa256'",
					},
					&cli.IntFlag{
						Name:    "token-expiration",
						Aliases: []string{"e"},
						Value:   0,
						Usage:   "Token expiration in seconds (0 for the server default)",
					},
					&cli.StringFlag{
						Name:    "scopes",
						Aliases: []string{"s"},
						Usage:   "Comma-separated list of scopes the API declares",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container, logger *slog.Logger) error {
						apiUseCase, err := container.APIUseCase()
						if err != nil {
							return err
						}
						return commands.RunCreateAPI(
							ctx,
							apiUseCase,
							logger,
							cmd.String("workspace-id"),
							cmd.String("name"),
							cmd.String("algorithm"),
							int64(cmd.Int("token-expiration")),
							cmd.String("scopes"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "create-client",
				Usage: "Create a new client of an API with its first secret",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "api-id",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "API ID (UUID)",
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Human-readable client name",
					},
					&cli.StringFlag{
						Name:    "for-workspace-id",
						Aliases: []string{"r"},
						Usage:   "Workspace ID the client is a root client for (management clients only)",
					},
					&cli.StringFlag{
						Name:    "scopes",
						Aliases: []string{"s"},
						Usage:   "Comma-separated list of scopes granted to the client",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container, logger *slog.Logger) error {
						clientUseCase, err := container.ClientUseCase()
						if err != nil {
							return err
						}
						return commands.RunCreateClient(
							ctx,
							clientUseCase,
							logger,
							cmd.String("api-id"),
							cmd.String("name"),
							cmd.String("for-workspace-id"),
							cmd.String("scopes"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "list-workspaces",
				Usage: "List provisioned workspaces",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Value:   50,
						Usage:   "Maximum number of workspaces to list",
					},
					&cli.IntFlag{
						Name:    "offset",
						Aliases: []string{"o"},
						Value:   0,
						Usage:   "Number of workspaces to skip",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container, logger *slog.Logger) error {
						workspaceUseCase, err := container.WorkspaceUseCase()
						if err != nil {
							return err
						}
						return commands.RunListWorkspaces(
							ctx,
							workspaceUseCase,
							logger,
							int(cmd.Int("limit")),
							int(cmd.Int("offset")),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "rotate-signing-secret",
				Usage: "Start a signing secret rotation for an API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "api-id",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "API ID (UUID)",
					},
					&cli.DurationFlag{
						Name:    "expires-in",
						Aliases: []string{"e"},
						Value:   0,
						Usage:   "Overlap window during which the old secret stays valid (0 for the server default)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container, logger *slog.Logger) error {
						rotationUC, err := container.RotationUseCase()
						if err != nil {
							return err
						}
						apiUseCase, err := container.APIUseCase()
						if err != nil {
							return err
						}
						return commands.RunRotateSigningSecret(
							ctx,
							rotationUC,
							apiUseCase,
							logger,
							cmd.String("api-id"),
							cmd.Duration("expires-in"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "rotate-client-secret",
				Usage: "Start a client secret rotation",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "client-id",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "Client ID (UUID)",
					},
					&cli.DurationFlag{
						Name:    "expires-in",
						Aliases: []string{"e"},
						Value:   0,
						Usage:   "Overlap window during which the old secret stays valid (0 for the server default)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container, logger *slog.Logger) error {
						rotationUC, err := container.RotationUseCase()
						if err != nil {
							return err
						}
						return commands.RunRotateClientSecret(
							ctx,
							rotationUC,
							logger,
							cmd.String("client-id"),
							cmd.Duration("expires-in"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
