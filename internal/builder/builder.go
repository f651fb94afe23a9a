package builder

import (
	"context"
	"fmt"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/graph"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/task"
	"github.com/vk/taskgrid/internal/taskid"
)

// Plan is a linked and validated set of tasks ready to hand to a scheduler.
type Plan struct {
	// Tasks holds every task in declaration order.
	Tasks  []*task.Task
	byName map[string]*task.Task
}

// Lookup returns the task declared under name.
func (p *Plan) Lookup(name string) (*task.Task, bool) {
	t, ok := p.byName[name]
	return t, ok
}

// Roots returns the tasks no other task depends on or adds, in declaration order.
func (p *Plan) Roots() []*task.Task {
	nodes := make([]*graph.Node[*task.Task], 0, len(p.Tasks))
	for _, t := range p.Tasks {
		nodes = append(nodes, t.Node())
	}
	var roots []*task.Task
	for _, t := range p.Tasks {
		if !t.Node().References(nodes) {
			roots = append(roots, t)
		}
	}
	return roots
}

// Option configures Build.
type Option func(*options)

type options struct {
	ids *taskid.Allocator
}

// WithIDs draws task ids from a instead of taskid.Default.
func WithIDs(a *taskid.Allocator) Option {
	return func(o *options) { o.ids = a }
}

// Build turns a configuration model into a validated plan.
func Build(ctx context.Context, model *config.Model, reg *registry.Registry, conv config.Converter, opts ...Option) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	o := options{ids: taskid.Default}
	for _, opt := range opts {
		opt(&o)
	}

	logger.Debug("Building task graph.", "tasks", len(model.Tasks))

	plan, err := createTasks(ctx, model, reg, conv, o)
	if err != nil {
		return nil, err
	}
	if err := linkRelationships(ctx, plan, model); err != nil {
		return nil, err
	}

	nodes := make([]*graph.Node[*task.Task], 0, len(plan.Tasks))
	for _, t := range plan.Tasks {
		nodes = append(nodes, t.Node())
	}
	if err := graph.Validate(nodes...); err != nil {
		return nil, fmt.Errorf("task graph validation failed: %w", err)
	}

	logger.Debug("Task graph built.", "tasks", len(plan.Tasks), "roots", len(plan.Roots()))
	return plan, nil
}
