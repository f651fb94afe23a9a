package app

import (
	"context"
	"fmt"

	"github.com/vk/taskgrid/internal/builder"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/scheduler"
)

// Run builds the task graph from the loaded configuration, executes it and
// prints a summary.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.healthCheckServer()
		defer a.closeHealthCheckServer()
	}

	a.logger.Debug("Building task graph from config model...")
	plan, err := builder.Build(ctx, a.model, a.registry, a.converter)
	if err != nil {
		return fmt.Errorf("failed to build task graph: %w", err)
	}
	a.logger.Info("Runners registered:", "count", len(a.registry.Names()), "keys", a.registry.Names())

	if len(plan.Tasks) == 0 {
		a.logger.Warn("No tasks found in grid, execution not required.")
		return nil
	}

	opts := []scheduler.Option{scheduler.WithWorkers(a.config.WorkerCount)}
	if a.history != nil {
		opts = append(opts, scheduler.WithRecorder(a.history))
	}
	sched := scheduler.New(opts...)
	a.setScheduler(sched)

	runErr := sched.Run(ctx, plan.Roots()...)
	printSummary(a.outW, sched, a.config.NoColor)

	a.logger.Debug("App.Run method finished.")
	if runErr != nil {
		return fmt.Errorf("execution failed: %w", runErr)
	}
	return nil
}
