package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/serializerconf/internal/container"
	"github.com/vk/serializerconf/internal/ctxlog"
	"github.com/vk/serializerconf/internal/loader"
	"github.com/vk/serializerconf/internal/normalize"
	"github.com/vk/serializerconf/internal/resolve"
	"github.com/vk/serializerconf/internal/schema"
	"github.com/vk/serializerconf/internal/wiring"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	schema    *schema.Schema
	registrar *container.Memory
}

// Result is what one processing run produces.
type Result struct {
	Config      normalize.Tree    `json:"config" yaml:"config"`
	Directories map[string]string `json:"directories" yaml:"directories"`
}

// NewApp is the constructor for the main application. Output goes to outW,
// logs to logW. cfg must come from NewConfig or LoadConfig.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		schema:    schema.Serializer(cfg.Debug),
		registrar: container.NewMemory(),
	}
}

// Container returns the registrar the last Process call wired into. This is
// primarily for testing and for hosts embedding the App.
func (a *App) Container() *container.Memory {
	return a.registrar
}

// Process loads every configured file, normalizes the merged result, resolves
// the metadata directories and wires the definitions into the container.
func (a *App) Process(ctx context.Context) (*Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Processing started.", "config_paths", a.config.ConfigPaths, "bundles", len(a.config.bundles))

	raws, err := loader.Load(ctx, a.config.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	tree, err := normalize.Process(ctx, a.schema, raws...)
	if err != nil {
		return nil, err
	}

	entries, err := resolve.Entries(tree)
	if err != nil {
		return nil, err
	}

	opts := []resolve.Option{resolve.WithProjectDir(a.config.ProjectDir)}
	if a.config.RequireExisting {
		opts = append(opts, resolve.WithExistenceCheck())
	}
	if tree.BoolAt("metadata.auto_detection") {
		opts = append(opts, resolve.WithAutoDetection(a.config.MetadataSubdir))
	}
	bundles := a.config.bundles.Anchor(a.config.ProjectDir)
	dirs, err := resolve.New(bundles, opts...).Resolve(ctx, entries)
	if err != nil {
		return nil, err
	}

	if err := wiring.Wire(ctx, a.registrar, tree, dirs, wiring.Options{CacheDir: a.config.CacheDir}); err != nil {
		return nil, fmt.Errorf("failed to wire definitions: %w", err)
	}

	a.logger.Info("Configuration processed.", "files", len(raws), "directories", len(dirs), "definitions", len(a.registrar.Names()))
	return &Result{Config: tree, Directories: dirs}, nil
}
