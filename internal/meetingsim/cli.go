package meetingsim

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/use-overseer/Orquesta/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "sim_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the meeting simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`Orquesta Meeting Simulator
==========================

Schedules a synthetic congregation against a running Orquesta service for a
number of consecutive weeks, feeds verdicts back, and verifies that role
rotation spreads assignments and that rejected candidates are suppressed.

Usage:
  go run cmd/meetingsim/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -token string
        Bearer token for the engine endpoints (admin secret works too)
  -weeks int
        Number of consecutive weeks to schedule (default 26)
  -roster int
        Size of the synthetic congregation (default 18)
  -reject-every int
        Reject the week's lector every Nth week, 0 disables (default 5)
  -start string
        ISO date of the first meeting week (default: next Monday)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for scheduled meetings (default: meetings_TIMESTAMP.json)
  -log string
        Log file for simulation output (default: sim_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate half a year with default settings
  go run cmd/meetingsim/main.go -token $ORQUESTA_ADMIN_TOKEN

  # A full year against a remote service, rejecting every 4th lector
  go run cmd/meetingsim/main.go -weeks 52 -reject-every 4 -url http://orquesta:8080 -token orq_...

  # Verbose run with a fixed start date
  go run cmd/meetingsim/main.go -verbose -weeks 12 -start 2025-03-03 -token orq_...
`)
}
