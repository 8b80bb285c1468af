package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/metrics"
	"github.com/vk/flowgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *config.Config
	registry   *registry.Registry
	metrics    *metrics.Collector
	httpServer *http.Server
}

// NewApp builds an App with its own logger, registry and metrics. Without
// modules the core set is installed. An inconsistent registry is a
// programmer error and panics.
func NewApp(outW io.Writer, cfg *config.Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules(outW, logger)
	}
	reg := registry.New().Install(modules...)
	logger.Debug("All Go modules registered.",
		"count", len(modules),
		"node_types", reg.NodeTags(),
		"socket_types", reg.SocketTags(),
	)

	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		metrics:  metrics.New(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
