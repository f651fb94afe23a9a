package app

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath string // hcl files

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	// WorkerCount bounds concurrently running task payloads; 0 is unbounded.
	WorkerCount int
	// HistoryPath is the SQLite file run history is written to; empty disables it.
	HistoryPath string
	NoColor     bool
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("WorkerCount must not be negative, got %d", cfg.WorkerCount)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("HealthcheckPort must be between 0 and 65535, got %d", cfg.HealthcheckPort)
	}
	cfg.HistoryPath = strings.TrimSpace(cfg.HistoryPath)

	return &cfg, nil
}
