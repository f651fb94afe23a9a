package registry

import (
	"context"
	"fmt"
	"log/slog"
)

// RegisteredRunner holds the compiled Go parts of a runner.
type RegisteredRunner struct {
	// NewInput returns a pointer to a fresh input struct. Nil means the
	// runner takes no arguments.
	NewInput func() any
	// Fn performs the work with the decoded input.
	Fn func(ctx context.Context, input any) error
}

// RegisterRunner registers a Go function under a runner name.
func (r *Registry) RegisterRunner(name string, handler *RegisteredRunner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runners[name]; exists {
		panic(fmt.Sprintf("runner handler with name '%s' already registered", name))
	}
	slog.Debug("Registering runner handler.", "name", name)
	r.runners[name] = handler
}
