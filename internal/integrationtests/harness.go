package integrationtests

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/vk/taskgrid/internal/app"
	"github.com/vk/taskgrid/internal/hcl"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/testutil"
)

// Result holds the outcome of an integration run.
type Result struct {
	App       *app.App
	Err       error
	LogOutput string
}

// RunIntegrationTest writes files to a temporary grid directory, builds an
// app with the given modules and runs it once.
func RunIntegrationTest(t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *Result {
	t.Helper()

	cfg.GridPath = testutil.WriteFiles(t, files)
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	cfg.NoColor = true

	logBuffer := &testutil.SafeBuffer{}
	a := app.NewApp(logBuffer, &cfg, hcl.NewLoader(hcl.WithEnv(map[string]string{})), modules...)
	t.Cleanup(func() {
		a.Close()
		if os.Getenv("TASKGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	err := a.Run(context.Background())
	return &Result{App: a, Err: err, LogOutput: logBuffer.String()}
}

// SleeperInput is the argument set of the mock "sleeper" runner.
type SleeperInput struct {
	ID   string `grid:"id"`
	Fail bool   `grid:"fail,optional"`
}

// MockSleeperModule registers a "sleeper" runner that sleeps and records
// when each id ran and how often.
type MockSleeperModule struct {
	Delay time.Duration

	mu    sync.Mutex
	times map[string]testutil.ExecutionRecord
	calls map[string]int
}

// NewMockSleeperModule creates a sleeper that sleeps for delay per call.
func NewMockSleeperModule(delay time.Duration) *MockSleeperModule {
	return &MockSleeperModule{
		Delay: delay,
		times: make(map[string]testutil.ExecutionRecord),
		calls: make(map[string]int),
	}
}

// Register implements registry.Module.
func (m *MockSleeperModule) Register(r *registry.Registry) {
	r.RegisterRunner("sleeper", &registry.RegisteredRunner{
		NewInput: func() any { return new(SleeperInput) },
		Fn: func(ctx context.Context, input any) error {
			in := input.(*SleeperInput)
			start := time.Now()
			time.Sleep(m.Delay)
			end := time.Now()

			m.mu.Lock()
			m.times[in.ID] = testutil.ExecutionRecord{Start: start, End: end}
			m.calls[in.ID]++
			m.mu.Unlock()

			if in.Fail {
				return fmt.Errorf("sleeper %s failed on purpose", in.ID)
			}
			return nil
		},
	})
}

// Record returns the execution record for id.
func (m *MockSleeperModule) Record(id string) (testutil.ExecutionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.times[id]
	return r, ok
}

// CallCount returns how many times id ran.
func (m *MockSleeperModule) CallCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[id]
}
