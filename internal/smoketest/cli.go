package smoketest

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/homerun/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging initializes the global logger on stdout, also appending to
// logFile when set. The returned func closes the log file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	var w io.Writer = os.Stdout
	closeFn := func() error { return nil }
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, f)
		closeFn = f.Close
	}
	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closeFn, nil
}

// ShowHelp prints usage information for the check tool.
func ShowHelp() {
	os.Stdout.WriteString(`Homerun Check Tool
==================

Generates synthetic datasets and probes a running homerun service.

Usage:
  go run ./cmd/homerun-check [options]

Options:
  -generate string
        Write a synthetic CSV dataset to this path and exit
  -players int
        Players to generate (default 24)
  -seasons int
        Seasons per player (default 3)
  -seed uint
        Generator seed (default 1)
  -url string
        Base URL of the service (default "http://localhost:8000")
  -top int
        Leaderboard entries to verify (default 10)
  -workers int
        Concurrent player probes (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Also append logs to this file
  -verbose
        Log every probed player
  -help
        Show this help message

Examples:
  # Generate a dataset, then serve it
  go run ./cmd/homerun-check -generate data/synthetic.csv -players 100
  HOMERUN_DATASET_PATH=data/synthetic.csv go run ./cmd

  # Probe a running service
  go run ./cmd/homerun-check -url http://localhost:8000 -workers 16
`)
}
