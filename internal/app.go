package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/currentview/internal/index"
	"github.com/starford/currentview/internal/modeservice"
	"github.com/starford/currentview/internal/settings"
	"github.com/starford/currentview/internal/storage"
	"github.com/starford/currentview/internal/workspace"
)

// App holds the components shared by the server, the MCP server and the
// one-shot CLI commands.
type App struct {
	Config   *Config
	Logger   *slog.Logger
	Store    *storage.FS
	Settings *settings.Store
	DB       *index.DB
	Service  *modeservice.Service

	// Migrated is set when legacy rules were rewritten at startup.
	Migrated bool

	version string
}

// Open builds the application from opts: logger, vault storage, settings
// store (migrated), metadata cache (synced) and the view-mode service.
// Extra service options, such as a publisher, are passed through.
func Open(ctx context.Context, opts []Option, svcOpts ...modeservice.Option) (*App, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	settingsFile := cfg.Settings.File(cfg.Vault.Path)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("settings_path", settingsFile),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	st, err := settings.OpenFile(settingsFile, logger)
	if err != nil {
		return nil, fmt.Errorf("init settings: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	// Run initial sync.
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	ws := workspace.New(cfg.Host.ViewState())
	svcOpts = append([]modeservice.Option{modeservice.WithLogger(logger)}, svcOpts...)
	svc := modeservice.New(st, store, db, ws, svcOpts...)

	migrated, err := svc.Migrate(ctx)
	if err != nil {
		svc.Close()
		_ = db.Close()
		return nil, fmt.Errorf("migrate settings: %w", err)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Settings: st,
		DB:       db,
		Service:  svc,
		Migrated: migrated,
		version:  app.version,
	}, nil
}

// Close stops pending activations and closes the metadata cache.
func (a *App) Close() error {
	a.Service.Close()
	return a.DB.Close()
}
