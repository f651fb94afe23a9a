package integrationtests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/app"
	"github.com/vk/taskgrid/internal/graph"
)

// TestErrorHandling_FailureSkipsDependents validates that a failing task
// skips everything downstream while unrelated tasks still run.
func TestErrorHandling_FailureSkipsDependents(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	gridHCL := `
		task "sleeper" "broken" {
		  add = ["child"]
		  arguments {
		    id   = "broken"
		    fail = true
		  }
		}
		task "sleeper" "child" {
		  arguments {
		    id = "child"
		  }
		}
		task "sleeper" "downstream" {
		  depends_on = ["broken"]
		  arguments {
		    id = "downstream"
		  }
		}
		task "sleeper" "bystander" {
		  arguments {
		    id = "bystander"
		  }
		}
	`
	sleeper := NewMockSleeperModule(10 * time.Millisecond)

	// --- Act ---
	result := RunIntegrationTest(t, map[string]string{"main.hcl": gridHCL}, app.Config{}, sleeper)

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "execution failed for broken: sleeper broken failed on purpose")
	assert.Zero(t, sleeper.CallCount("child"))
	assert.Zero(t, sleeper.CallCount("downstream"))
	assert.Equal(t, 1, sleeper.CallCount("bystander"))

	sum := result.App.Scheduler().Summary()
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 2, sum.Skipped)
	assert.Contains(t, result.LogOutput, "Skipping task work due to upstream failure.")
}

// TestErrorHandling_SiblingFailureFailsParentDependents validates that a
// failing sibling blocks tasks that depend on its parent.
func TestErrorHandling_SiblingFailureFailsParentDependents(t *testing.T) {
	t.Parallel()
	gridHCL := `
		task "sleeper" "parent" {
		  add = ["bad"]
		  arguments {
		    id = "parent"
		  }
		}
		task "sleeper" "bad" {
		  arguments {
		    id   = "bad"
		    fail = true
		  }
		}
		task "sleeper" "after" {
		  depends_on = ["parent"]
		  arguments {
		    id = "after"
		  }
		}
	`
	sleeper := NewMockSleeperModule(10 * time.Millisecond)

	result := RunIntegrationTest(t, map[string]string{"main.hcl": gridHCL}, app.Config{}, sleeper)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "execution failed for bad")
	assert.Equal(t, 1, sleeper.CallCount("parent"))
	assert.Zero(t, sleeper.CallCount("after"))

	sum := result.App.Scheduler().Summary()
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Incomplete, "parent ran but its sibling failed")
	assert.Equal(t, 1, sum.Skipped)
	assert.Contains(t, result.LogOutput, "1 incomplete")
}

// TestErrorHandling_CycleIsRejectedBeforeRunning validates that nothing runs
// when the grid can never finish.
func TestErrorHandling_CycleIsRejectedBeforeRunning(t *testing.T) {
	t.Parallel()
	gridHCL := `
		task "sleeper" "a" {
		  depends_on = ["b"]
		  arguments {
		    id = "a"
		  }
		}
		task "sleeper" "b" {
		  add = ["a"]
		  arguments {
		    id = "b"
		  }
		}
	`
	sleeper := NewMockSleeperModule(0)

	result := RunIntegrationTest(t, map[string]string{"main.hcl": gridHCL}, app.Config{}, sleeper)

	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, graph.ErrCycle)
	assert.Zero(t, sleeper.CallCount("a"))
	assert.Zero(t, sleeper.CallCount("b"))
	assert.Nil(t, result.App.Scheduler())
}
