// Package sleep provides a runner that waits for a while and can be told to
// fail, which makes it handy for trying out grid shapes.
package sleep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/registry"
)

// ErrRequestedFailure is returned when the input asks the runner to fail.
var ErrRequestedFailure = errors.New("failure requested")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the sleep runner.
type Input struct {
	Duration string `grid:"duration,optional"`
	Fail     bool   `grid:"fail,optional"`
	Reason   string `grid:"reason,optional"`
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("sleep", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, input any) error {
			return OnRunSleep(ctx, input.(*Input))
		},
	})
}

// OnRunSleep waits for the configured duration, then fails if asked to.
func OnRunSleep(ctx context.Context, input *Input) error {
	logger := ctxlog.FromContext(ctx)

	var d time.Duration
	if input.Duration != "" {
		var err error
		if d, err = time.ParseDuration(input.Duration); err != nil {
			return fmt.Errorf("invalid duration %q: %w", input.Duration, err)
		}
	}

	logger.Debug("Sleeping.", "duration", d)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	if input.Fail {
		if input.Reason != "" {
			return fmt.Errorf("%w: %s", ErrRequestedFailure, input.Reason)
		}
		return ErrRequestedFailure
	}
	return nil
}
