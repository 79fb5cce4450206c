package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/use-overseer/Orquesta/internal/meetingsim"
)

// Default configuration constants.
const (
	defaultWeeks       = 26
	defaultRosterSize  = 18
	defaultRejectEvery = 5
	defaultTimeout     = 30 * time.Second
	defaultSimTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8080", "Base URL of the service")
		token       = flag.String("token", "", "Bearer token for the engine endpoints")
		weeks       = flag.Int("weeks", defaultWeeks, "Number of weeks to schedule")
		rosterSize  = flag.Int("roster", defaultRosterSize, "Number of people on the synthetic roster")
		rejectEvery = flag.Int("reject-every", defaultRejectEvery, "Reject the lector every Nth week (0 disables rejections)")
		startDate   = flag.String("start", "", "First meeting date, YYYY-MM-DD (default: next Monday)")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile  = flag.String("output", "", "Output file for scheduled meetings (default: meetings_TIMESTAMP.json)")
		logFile     = flag.String("log", "", "Log file for simulation output (default: sim_log_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		meetingsim.ShowHelp()
		return
	}

	// Setup logging
	if err := meetingsim.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSimTimeout)
	defer cancel()

	// Create simulation configuration
	config := &meetingsim.Config{
		BaseURL:     *baseURL,
		Token:       *token,
		Weeks:       *weeks,
		RosterSize:  *rosterSize,
		RejectEvery: *rejectEvery,
		StartDate:   *startDate,
		Timeout:     *timeout,
		OutputFile:  *outputFile,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	// Run the simulation
	if err := meetingsim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
