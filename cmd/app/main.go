package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/currentview/internal"
	pkgconfig "github.com/starford/currentview/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if vault := cmd.String("vault"); vault != "" {
		cfg.Vault.Path = vault
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

// oneShot opens the application with logs on stderr, runs fn and closes it.
func oneShot(ctx context.Context, cmd *cli.Command, fn func(*internal.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	app, err := internal.Open(ctx, []internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
		internal.WithVersion(version),
	})
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func requirePath(cmd *cli.Command) (string, error) {
	path := cmd.Args().First()
	if path == "" {
		return "", fmt.Errorf("%s: note path is required", cmd.Name)
	}
	return path, nil
}

func resolve(ctx context.Context, cmd *cli.Command) error {
	path, err := requirePath(cmd)
	if err != nil {
		return err
	}
	return oneShot(ctx, cmd, func(app *internal.App) error {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(app.Service.Resolve(ctx, path))
	})
}

func lockOf(ctx context.Context, cmd *cli.Command) error {
	path, err := requirePath(cmd)
	if err != nil {
		return err
	}
	return oneShot(ctx, cmd, func(app *internal.App) error {
		info := app.Service.LookupLock(ctx, path)
		if !info.Locked {
			fmt.Println("not locked")
			return nil
		}
		fmt.Println(info.Lock)
		return nil
	})
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	return oneShot(ctx, cmd, func(app *internal.App) error {
		if app.Migrated {
			cfg := app.Settings.Snapshot()
			fmt.Printf("migrated: %d folder rules, %d pattern rules\n", len(cfg.FolderRules), len(cfg.PatternRules))
			return nil
		}
		fmt.Println("nothing to migrate")
		return nil
	})
}

func main() {
	cmd := &cli.Command{
		Name:    "currentview",
		Usage:   "Pins Markdown notes to reading, source or live view by folder, pattern and frontmatter rules",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "vault",
				Usage:   "Vault directory (overrides vault.path)",
				Sources: cli.EnvVars("APP_VAULT_PATH"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, SSE stream and vault watcher",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools on stdio",
				Action: serveMCP,
			},
			{
				Name:      "resolve",
				Usage:     "Print how a note's view mode is decided",
				ArgsUsage: "<note path>",
				Action:    resolve,
			},
			{
				Name:      "lock-of",
				Usage:     "Print the rule that pins a note or folder",
				ArgsUsage: "<path>",
				Action:    lockOf,
			},
			{
				Name:   "migrate",
				Usage:  "Fold legacy rule lists into folder and pattern rules",
				Action: migrate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
