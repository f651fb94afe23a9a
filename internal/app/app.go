package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/history"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/scheduler"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	model      *config.Model
	converter  config.Converter
	history    *history.Store
	httpServer *http.Server

	mu        sync.Mutex
	scheduler *scheduler.Scheduler
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Without modules, the core modules are registered.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfgModel, converter, err := loader.Load(ctx, appConfig.GridPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.", "tasks", len(cfgModel.Tasks))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	reg.Load(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.ValidateRegistry(ctx); err != nil {
		// This is a programmer error, so we panic.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	a := &App{
		ctx:       ctx,
		outW:      outW,
		logger:    logger,
		config:    appConfig,
		registry:  reg,
		model:     cfgModel,
		converter: converter,
	}

	if appConfig.HistoryPath != "" {
		store, err := history.Open(ctx, appConfig.HistoryPath)
		if err != nil {
			panic(fmt.Errorf("failed to open run history: %w", err))
		}
		a.history = store
		logger.Debug("Run history enabled.", "path", store.Path())
	}

	return a
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// History returns the run history store, or nil when it is disabled.
func (a *App) History() *history.Store {
	return a.history
}

// Scheduler returns the scheduler of the current or last run, or nil.
func (a *App) Scheduler() *scheduler.Scheduler {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scheduler
}

func (a *App) setScheduler(s *scheduler.Scheduler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scheduler = s
}

// Close releases the resources held by the app.
func (a *App) Close() error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}
