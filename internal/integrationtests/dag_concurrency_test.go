package integrationtests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/app"
)

// TestDagConcurrency_IndependentExecution validates that two independent
// dependency chains run concurrently.
func TestDagConcurrency_IndependentExecution(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	gridHCL := `
		# Track 1
		task "sleeper" "track1_A" {
		  arguments {
		    id = "1A"
		  }
		}
		task "sleeper" "track1_B" {
		  depends_on = ["track1_A"]
		  arguments {
		    id = "1B"
		  }
		}

		# Track 2
		task "sleeper" "track2_A" {
		  arguments {
		    id = "2A"
		  }
		}
		task "sleeper" "track2_B" {
		  depends_on = ["track2_A"]
		  arguments {
		    id = "2B"
		  }
		}
	`
	sleeper := NewMockSleeperModule(100 * time.Millisecond)

	// --- Act ---
	result := RunIntegrationTest(t, map[string]string{"main.hcl": gridHCL}, app.Config{}, sleeper)

	// --- Assert ---
	require.NoError(t, result.Err, "test run failed unexpectedly")

	r1A, _ := sleeper.Record("1A")
	r1B, _ := sleeper.Record("1B")
	r2A, _ := sleeper.Record("2A")
	r2B, _ := sleeper.Record("2B")

	assert.False(t, r1B.Start.Before(r1A.End), "1B must start after 1A ends")
	assert.False(t, r2B.Start.Before(r2A.End), "2B must start after 2A ends")
	assert.True(t, r1A.Overlaps(r2A), "independent chains should run concurrently")
}

// TestDagConcurrency_SiblingFanOut validates that siblings start together
// once their parent's work is done, and that a dependent of the parent waits
// for the whole sibling group.
func TestDagConcurrency_SiblingFanOut(t *testing.T) {
	t.Parallel()
	gridHCL := `
		task "sleeper" "parent" {
		  add = ["left", "right"]
		  arguments {
		    id = "parent"
		  }
		}
		task "sleeper" "left" {
		  arguments {
		    id = "left"
		  }
		}
		task "sleeper" "right" {
		  arguments {
		    id = "right"
		  }
		}
		task "sleeper" "after" {
		  depends_on = ["parent"]
		  arguments {
		    id = "after"
		  }
		}
	`
	sleeper := NewMockSleeperModule(80 * time.Millisecond)

	result := RunIntegrationTest(t, map[string]string{"main.hcl": gridHCL}, app.Config{}, sleeper)

	require.NoError(t, result.Err)
	parent, _ := sleeper.Record("parent")
	left, _ := sleeper.Record("left")
	right, _ := sleeper.Record("right")
	after, _ := sleeper.Record("after")

	assert.False(t, left.Start.Before(parent.End))
	assert.False(t, right.Start.Before(parent.End))
	assert.True(t, left.Overlaps(right), "siblings should run concurrently")
	assert.False(t, after.Start.Before(left.End), "after waits for the sibling group")
	assert.False(t, after.Start.Before(right.End), "after waits for the sibling group")
}

// TestDagConcurrency_SharedDependencyRunsOnce validates the diamond shape.
func TestDagConcurrency_SharedDependencyRunsOnce(t *testing.T) {
	t.Parallel()
	gridHCL := `
		task "sleeper" "base" {
		  arguments {
		    id = "base"
		  }
		}
		task "sleeper" "x" {
		  depends_on = ["base"]
		  arguments {
		    id = "x"
		  }
		}
		task "sleeper" "z" {
		  then = ["base"]
		  arguments {
		    id = "z"
		  }
		}
	`
	sleeper := NewMockSleeperModule(20 * time.Millisecond)

	result := RunIntegrationTest(t, map[string]string{"main.hcl": gridHCL}, app.Config{}, sleeper)

	require.NoError(t, result.Err)
	assert.Equal(t, 1, sleeper.CallCount("base"))
	assert.Equal(t, 1, sleeper.CallCount("x"))
	assert.Equal(t, 1, sleeper.CallCount("z"))
}

// TestDagConcurrency_WorkerLimit validates that a single worker serialises payloads.
func TestDagConcurrency_WorkerLimit(t *testing.T) {
	t.Parallel()
	gridHCL := `
		task "sleeper" "a" {
		  arguments {
		    id = "a"
		  }
		}
		task "sleeper" "b" {
		  arguments {
		    id = "b"
		  }
		}
		task "sleeper" "c" {
		  arguments {
		    id = "c"
		  }
		}
	`
	sleeper := NewMockSleeperModule(40 * time.Millisecond)

	result := RunIntegrationTest(t, map[string]string{"main.hcl": gridHCL}, app.Config{WorkerCount: 1}, sleeper)

	require.NoError(t, result.Err)
	ids := []string{"a", "b", "c"}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			ri, _ := sleeper.Record(ids[i])
			rj, _ := sleeper.Record(ids[j])
			assert.False(t, ri.Start.Before(rj.End) && rj.Start.Before(ri.End),
				"%s and %s must not overlap with one worker", ids[i], ids[j])
		}
	}
}
