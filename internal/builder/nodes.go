package builder

import (
	"context"
	"fmt"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/task"
)

// createTasks creates one task per block, binding each to its runner.
func createTasks(ctx context.Context, model *config.Model, reg *registry.Registry, conv config.Converter, o options) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	plan := &Plan{byName: make(map[string]*task.Task, len(model.Tasks))}

	for _, tc := range model.Tasks {
		if _, dup := plan.byName[tc.Name]; dup {
			return nil, fmt.Errorf("task %q in %s: %w", tc.Name, tc.Source, ErrDuplicateTask)
		}

		h, ok := reg.Lookup(tc.Runner)
		if !ok {
			return nil, fmt.Errorf("task %q uses runner %q: %w", tc.Name, tc.Runner, ErrUnknownRunner)
		}

		work, err := bindWork(ctx, tc, h, conv)
		if err != nil {
			return nil, err
		}

		t := task.New(tc.Name, work, task.WithIDs(o.ids))
		plan.Tasks = append(plan.Tasks, t)
		plan.byName[tc.Name] = t
		logger.Debug("Created task.", "task", tc.Name, "task_id", t.ID(), "runner", tc.Runner)
	}
	return plan, nil
}

// bindWork decodes the block's arguments and wraps the runner call.
func bindWork(ctx context.Context, tc *config.Task, h *registry.RegisteredRunner, conv config.Converter) (task.Work, error) {
	var input any
	if h.NewInput != nil {
		input = h.NewInput()
		if err := conv.DecodeArguments(ctx, input, tc.Arguments); err != nil {
			return nil, fmt.Errorf("failed to decode arguments for task %q: %w", tc.Name, err)
		}
	} else if len(tc.Arguments) > 0 {
		return nil, fmt.Errorf("task %q: runner %q takes no arguments", tc.Name, tc.Runner)
	}

	return task.WorkFunc(func(ctx context.Context, _ *task.Task) error {
		return h.Fn(ctx, input)
	}), nil
}
