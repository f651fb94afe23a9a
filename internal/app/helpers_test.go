package app

import (
	"os"
	"testing"

	"github.com/vk/taskgrid/internal/hcl"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/testutil"
)

// setupAppTest writes grid to a temporary directory and creates an app for it.
func setupAppTest(t *testing.T, grid string, cfg Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	cfg.GridPath = testutil.WriteFiles(t, map[string]string{"main.hcl": grid})
	cfg.LogLevel = "debug"
	cfg.NoColor = true

	logBuffer := &testutil.SafeBuffer{}
	testApp := NewApp(logBuffer, &cfg, hcl.NewLoader(hcl.WithEnv(map[string]string{"TARGET": "world"})), modules...)

	t.Cleanup(func() {
		testApp.Close()
		if os.Getenv("TASKGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
