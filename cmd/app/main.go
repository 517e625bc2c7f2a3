package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/logpub/internal"
	"github.com/starford/logpub/internal/migrate"
	pkgconfig "github.com/starford/logpub/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
		internal.WithWatch(cmd.Bool("watch")),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.App.HTTP.Port = int(port)
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version), internal.WithServe(true)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("migrate: at least one post file is required")
	}
	results, err := migrate.Paths(ctx, paths, slog.Default())
	for _, r := range results {
		if r.Skipped {
			continue
		}
		fmt.Fprintf(cmd.Root().Writer, "%s -> %s\n", r.Path, r.URL)
	}
	return err
}

func main() {
	cmd := &cli.Command{
		Name:    "logpub",
		Usage:   "Publish the public pages of an outliner graph as front-matter Markdown",
		Version: version,
		Action:  runExport,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "export",
				Usage:  "Export public pages to the output directory",
				Action: runExport,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Re-export whenever the graph changes",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Export, watch and serve a live preview of the site",
				Action: runServe,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "port",
						Usage: "Override app.http.port",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve read-only graph tools over MCP stdio",
				Action: runMCP,
			},
			{
				Name:      "migrate",
				Usage:     "Add date and legacy url front matter to dated blog posts",
				ArgsUsage: "FILE...",
				Action:    runMigrate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
