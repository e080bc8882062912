package rostercheck

import (
	"fmt"
	"io"
	"os"

	"github.com/mergington/activities/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging sends tool output to stdout and, when logFile is set, to
// that file as well.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer = io.NopCloser(nil)
	)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	if err := logger.InitWith(out, logger.FormatText); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		return nil, err
	}
	return closer, nil
}

// ShowHelp prints usage information for the roster check tool.
func ShowHelp() {
	os.Stdout.WriteString(`Mergington Roster Check
=======================

Signs up a batch of generated students for one activity concurrently,
submitting every email twice, then unregisters them again. After each
phase the /activities listing is checked: every student must appear
exactly once and the original roster must be untouched.

Usage:
  go run ./cmd/roster-check [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -activity string
        Activity to exercise (default "Programming Class")
  -students int
        Number of generated students (default 100)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -domain string
        Email domain for generated students (default "rostercheck.mergington.edu")
  -keep
        Leave the generated students signed up
  -log string
        Also write output to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Check the local service with default settings
  go run ./cmd/roster-check

  # Hammer one activity harder
  go run ./cmd/roster-check -activity "Chess Club" -students 1000 -workers 32
`)
}
