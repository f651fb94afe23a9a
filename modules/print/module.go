package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed messages. Nil means os.Stdout.
	Out io.Writer
}

// Input defines the arguments for the print runner.
type Input struct {
	Message string `grid:"message"`
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	r.RegisterRunner("print", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, input any) error {
			return OnRunPrint(ctx, out, input.(*Input))
		},
	})
}

// OnRunPrint writes the message on its own line.
func OnRunPrint(ctx context.Context, out io.Writer, input *Input) error {
	ctxlog.FromContext(ctx).Debug("Printing message.", "length", len(input.Message))
	if _, err := fmt.Fprintln(out, input.Message); err != nil {
		return fmt.Errorf("failed to print message: %w", err)
	}
	return nil
}
