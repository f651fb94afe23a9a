package cli

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/app"
)

func TestParse(t *testing.T) {
	defaults := app.Config{LogFormat: "json", LogLevel: "info", WorkerCount: 10}

	testCases := []struct {
		name     string
		args     []string
		env      map[string]string
		want     *app.Config
		wantExit bool
		wantCode int
	}{
		{
			name: "positional path with defaults",
			args: []string{"grid/"},
			want: func() *app.Config { c := defaults; c.GridPath = "grid/"; return &c }(),
		},
		{
			name: "long flag wins over shorthand and positional",
			args: []string{"-grid", "a.hcl", "-g", "b.hcl", "c.hcl"},
			want: func() *app.Config { c := defaults; c.GridPath = "a.hcl"; return &c }(),
		},
		{
			name: "every option",
			args: []string{
				"-g", "grid", "-log-level", "DEBUG", "-log-format", "text", "-workers", "0",
				"-healthcheck-port", "8080", "-history-db", "runs.db", "-no-color",
			},
			want: &app.Config{
				GridPath: "grid", LogLevel: "debug", LogFormat: "text", WorkerCount: 0,
				HealthcheckPort: 8080, HistoryPath: "runs.db", NoColor: true,
			},
		},
		{
			name: "environment supplies defaults",
			args: []string{"grid"},
			env: map[string]string{
				EnvLogLevel: "WARN", EnvLogFormat: "text", EnvWorkers: "3",
				EnvHistoryDB: "env.db", EnvNoColor: "1",
			},
			want: &app.Config{
				GridPath: "grid", LogLevel: "warn", LogFormat: "text", WorkerCount: 3,
				HistoryPath: "env.db", NoColor: true,
			},
		},
		{
			name: "flags win over environment",
			args: []string{"-workers", "0", "-log-level", "error", "grid"},
			env:  map[string]string{EnvWorkers: "3", EnvLogLevel: "debug", EnvNoColor: ""},
			want: func() *app.Config {
				c := defaults
				c.GridPath, c.WorkerCount, c.LogLevel = "grid", 0, "error"
				return &c
			}(),
		},
		{name: "bad workers in environment", args: []string{"grid"}, env: map[string]string{EnvWorkers: "many"}, wantCode: 2},
		{name: "bad log level in environment", args: []string{"grid"}, env: map[string]string{EnvLogLevel: "loud"}, wantCode: 2},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "no path prints usage", args: nil, wantExit: true},
		{name: "bad log format", args: []string{"-log-format", "xml", "g"}, wantCode: 2},
		{name: "bad log level", args: []string{"-log-level", "loud", "g"}, wantCode: 2},
		{name: "negative workers", args: []string{"-workers", "-1", "g"}, wantCode: 2},
		{name: "unknown flag", args: []string{"-nope"}, wantCode: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, exit, err := ParseWithEnv(tc.args, &out, func(key string) (string, bool) {
				v, ok := tc.env[key]
				return v, ok
			})

			if tc.wantCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.wantCode, exitErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
