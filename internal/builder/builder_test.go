package builder_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/builder"
	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/graph"
	"github.com/vk/taskgrid/internal/hcl"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/scheduler"
	"github.com/vk/taskgrid/internal/task"
	"github.com/vk/taskgrid/internal/taskid"
	"github.com/vk/taskgrid/internal/testutil"
)

type echoInput struct {
	Message string `grid:"message"`
}

// echoRegistry registers an "echo" runner that appends its message to a log.
func echoRegistry(mu *sync.Mutex, log *[]string) *registry.Registry {
	reg := registry.New()
	reg.Load(&testutil.SimpleModule{
		RunnerName: "echo",
		Runner: &registry.RegisteredRunner{
			NewInput: func() any { return &echoInput{} },
			Fn: func(_ context.Context, input any) error {
				mu.Lock()
				defer mu.Unlock()
				*log = append(*log, input.(*echoInput).Message)
				return nil
			},
		},
	}, &testutil.SimpleModule{
		RunnerName: "noop",
		Runner:     &registry.RegisteredRunner{Fn: func(context.Context, any) error { return nil }},
	})
	return reg
}

// load parses an HCL grid into a model and converter.
func load(t *testing.T, grid string) (*config.Model, config.Converter) {
	t.Helper()
	dir := testutil.WriteFiles(t, map[string]string{"grid.hcl": grid})
	model, conv, err := hcl.NewLoader(hcl.WithEnv(map[string]string{"WHO": "world"})).Load(context.Background(), dir)
	require.NoError(t, err)
	return model, conv
}

func TestBuild_LinksAndRuns(t *testing.T) {
	// --- Arrange ---
	var (
		mu  sync.Mutex
		out []string
	)
	reg := echoRegistry(&mu, &out)
	model, conv := load(t, `
		task "echo" "first" {
		  arguments {
		    message = "first"
		  }
		}
		task "echo" "parent" {
		  depends_on = ["first"]
		  add        = ["child"]
		  arguments {
		    message = "hello ${env.WHO}"
		  }
		}
		task "echo" "child" {
		  arguments {
		    message = "child"
		  }
		}
		task "noop" "last" {
		  then = ["parent"]
		}
	`)

	// --- Act ---
	plan, err := builder.Build(context.Background(), model, reg, conv, builder.WithIDs(taskid.New()))
	require.NoError(t, err)

	// --- Assert ---
	require.Len(t, plan.Tasks, 4)
	parent, ok := plan.Lookup("parent")
	require.True(t, ok)
	child, _ := plan.Lookup("child")
	first, _ := plan.Lookup("first")
	last, _ := plan.Lookup("last")

	assert.Equal(t, []*task.Task{first}, parent.Relatives())
	assert.Equal(t, []*task.Task{child}, parent.Siblings())
	assert.Same(t, parent, child.Parent())
	assert.Equal(t, []*task.Task{parent}, last.Relatives())
	assert.Equal(t, []*task.Task{last}, plan.Roots())
	assert.Equal(t, uint64(1), first.ID(), "ids follow declaration order")

	require.NoError(t, scheduler.New().Run(context.Background(), plan.Roots()...))
	assert.Equal(t, []string{"first", "hello world", "child"}, out)
}

func TestBuild_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		grid    string
		wantIs  error
		wantErr string
	}{
		{
			name: "duplicate name",
			grid: `
				task "noop" "a" {}
				task "noop" "a" {}
			`,
			wantIs: builder.ErrDuplicateTask,
		},
		{
			name:   "unknown runner",
			grid:   `task "teleport" "a" {}`,
			wantIs: builder.ErrUnknownRunner,
		},
		{
			name:    "unknown dependency",
			grid:    `task "noop" "a" { depends_on = ["ghost"] }`,
			wantIs:  builder.ErrUnknownTask,
			wantErr: `task "a" depends_on references "ghost"`,
		},
		{
			name:   "unknown sibling",
			grid:   `task "noop" "a" { add = ["ghost"] }`,
			wantIs: builder.ErrUnknownTask,
		},
		{
			name:    "missing required argument",
			grid:    `task "echo" "a" {}`,
			wantErr: `failed to decode arguments for task "a": missing required argument "message"`,
		},
		{
			name: "arguments for a runner without input",
			grid: `
				task "noop" "a" {
				  arguments {
				    x = 1
				  }
				}
			`,
			wantErr: "takes no arguments",
		},
		{
			name: "cycle",
			grid: `
				task "noop" "a" { depends_on = ["b"] }
				task "noop" "b" { depends_on = ["a"] }
			`,
			wantIs: graph.ErrCycle,
		},
		{
			name: "sibling depends on its parent",
			grid: `
				task "noop" "p" { add = ["s"] }
				task "noop" "s" { depends_on = ["p"] }
			`,
			wantIs: graph.ErrCycle,
		},
		{
			name: "two parents",
			grid: `
				task "noop" "p1" { add = ["s"] }
				task "noop" "p2" { add = ["s"] }
				task "noop" "s" {}
			`,
			wantIs: graph.ErrInvalid,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var mu sync.Mutex
			var out []string
			model, conv := load(t, tc.grid)

			_, err := builder.Build(context.Background(), model, echoRegistry(&mu, &out), conv, builder.WithIDs(taskid.New()))

			require.Error(t, err)
			if tc.wantIs != nil {
				assert.ErrorIs(t, err, tc.wantIs)
			}
			if tc.wantErr != "" {
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}
