package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/vk/taskgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Environment variables that provide flag defaults. An explicit flag wins.
const (
	EnvLogLevel  = "TASKGRID_LOG_LEVEL"
	EnvLogFormat = "TASKGRID_LOG_FORMAT"
	EnvWorkers   = "TASKGRID_WORKERS"
	EnvHistoryDB = "TASKGRID_HISTORY_DB"
	// EnvNoColor follows the https://no-color.org convention: any non-empty
	// value disables color.
	EnvNoColor = "NO_COLOR"
)

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

// Parse processes command-line arguments with defaults taken from the process
// environment. It returns a populated app.Config, a boolean indicating if the
// program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	return ParseWithEnv(args, output, os.LookupEnv)
}

// ParseWithEnv is Parse with an explicit environment.
func ParseWithEnv(args []string, output io.Writer, lookup LookupFunc) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	defaults, err := envDefaults(lookup)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagSet := flag.NewFlagSet("taskgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
taskgrid - Run a grid of dependent tasks concurrently.

Usage:
  taskgrid [options] [GRID_PATH]

Arguments:
  GRID_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Environment:
  TASKGRID_LOG_LEVEL, TASKGRID_LOG_FORMAT, TASKGRID_WORKERS and
  TASKGRID_HISTORY_DB set the defaults of the matching options.
  NO_COLOR disables colored output.

Options:
`)
		flagSet.PrintDefaults()
	}

	cfg := defaults
	var gridFlag, gFlag string
	flagSet.StringVar(&gridFlag, "grid", "", "Path to the grid file or directory.")
	flagSet.StringVar(&gFlag, "g", "", "Path to the grid file or directory (shorthand).")
	flagSet.IntVar(&cfg.HealthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	flagSet.StringVar(&cfg.LogFormat, "log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	flagSet.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.IntVar(&cfg.WorkerCount, "workers", defaults.WorkerCount, "Maximum number of task payloads running at once. 0 is unbounded.")
	flagSet.StringVar(&cfg.HistoryPath, "history-db", defaults.HistoryPath, "Path to a SQLite file that records every run. Empty disables history.")
	flagSet.BoolVar(&cfg.NoColor, "no-color", defaults.NoColor, "Disable colored summary output.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	switch {
	case gridFlag != "":
		cfg.GridPath = gridFlag
	case gFlag != "":
		cfg.GridPath = gFlag
	case flagSet.NArg() > 0:
		cfg.GridPath = flagSet.Arg(0)
	}
	slog.Debug("Grid path determined.", "path", cfg.GridPath)

	if cfg.GridPath == "" {
		slog.Debug("No grid path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// envDefaults returns the built-in defaults overridden by the environment.
func envDefaults(lookup LookupFunc) (app.Config, error) {
	cfg := app.Config{LogFormat: "json", LogLevel: "info", WorkerCount: 10}
	if lookup == nil {
		return cfg, nil
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: must be an integer", EnvWorkers, v)
		}
		cfg.WorkerCount = n
	}
	if v, ok := lookup(EnvHistoryDB); ok {
		cfg.HistoryPath = v
	}
	if v, ok := lookup(EnvNoColor); ok && v != "" {
		cfg.NoColor = true
	}
	return cfg, nil
}
