package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		in      Config
		wantErr string
	}{
		{name: "valid", in: Config{GridPath: "grid", WorkerCount: 4, HistoryPath: " runs.db "}},
		{name: "missing grid", in: Config{}, wantErr: "GridPath is a required"},
		{name: "negative workers", in: Config{GridPath: "g", WorkerCount: -1}, wantErr: "WorkerCount must not be negative"},
		{name: "bad port", in: Config{GridPath: "g", HealthcheckPort: 70000}, wantErr: "HealthcheckPort must be between"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.in)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "runs.db", cfg.HistoryPath)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{GridPath: "grids/main.hcl", LogLevel: "warn", LogFormat: "json"}
	newLogger(cfg, &buf).Info("hidden")
	newLogger(cfg, &buf).Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"k":"v"`)
	assert.Contains(t, buf.String(), `"grid":"grids/main.hcl"`)

	buf.Reset()
	newLogger(&Config{LogLevel: "bogus", LogFormat: "text"}, &buf).Info("info is the default")
	assert.Contains(t, buf.String(), "level=INFO")
	assert.NotContains(t, buf.String(), "grid=")

	buf.Reset()
	newLogger(&Config{LogLevel: "DEBUG", LogFormat: "text"}, &buf).Debug("case does not matter")
	assert.Contains(t, buf.String(), "level=DEBUG")
}
