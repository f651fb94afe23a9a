// Package env_vars provides the "env" runner, a precondition task that
// fails when required environment variables are missing.
package env_vars

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Lookup overrides os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Input defines the arguments for the env runner.
type Input struct {
	Require  []string `grid:"require"`
	NonEmpty bool     `grid:"non_empty,optional"`
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	lookup := m.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	r.RegisterRunner("env", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, input any) error {
			return OnRunEnvVars(ctx, lookup, input.(*Input))
		},
	})
}

// OnRunEnvVars checks that every required variable is set.
func OnRunEnvVars(ctx context.Context, lookup func(string) (string, bool), input *Input) error {
	var missing []string
	for _, name := range input.Require {
		v, ok := lookup(name)
		if !ok || (input.NonEmpty && v == "") {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}
	ctxlog.FromContext(ctx).Debug("Environment check passed.", "checked", len(input.Require))
	return nil
}
