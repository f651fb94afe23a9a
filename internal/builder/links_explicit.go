package builder

import (
	"context"
	"fmt"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/task"
)

// linkRelationships records depends_on, then and add on the plan's tasks.
func linkRelationships(ctx context.Context, plan *Plan, model *config.Model) error {
	baseLogger := ctxlog.FromContext(ctx)

	for _, tc := range model.Tasks {
		t := plan.byName[tc.Name]
		logger := baseLogger.With("task", tc.Name)

		deps, err := resolve(plan, tc.Name, "depends_on", tc.DependsOn)
		if err != nil {
			return err
		}
		then, err := resolve(plan, tc.Name, "then", tc.Then)
		if err != nil {
			return err
		}
		siblings, err := resolve(plan, tc.Name, "add", tc.Add)
		if err != nil {
			return err
		}

		if len(deps) > 0 {
			logger.Debug("Linking dependencies.", "depends_on", tc.DependsOn)
			t.Depends(deps...)
		}
		if len(then) > 0 {
			logger.Debug("Linking then.", "then", tc.Then)
			t.Then(then...)
		}
		if len(siblings) > 0 {
			logger.Debug("Linking siblings.", "add", tc.Add)
			t.Add(siblings...)
		}
	}
	return nil
}

func resolve(plan *Plan, from, attr string, names []string) ([]*task.Task, error) {
	out := make([]*task.Task, 0, len(names))
	for _, name := range names {
		t, ok := plan.byName[name]
		if !ok {
			return nil, fmt.Errorf("task %q %s references %q: %w", from, attr, name, ErrUnknownTask)
		}
		out = append(out, t)
	}
	return out, nil
}
