package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/mergington/activities/internal/rostercheck"
)

// Default configuration constants.
const (
	defaultStudents    = 100
	defaultActivity    = "Programming Class"
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8000", "Base URL of the service")
		activity = flag.String("activity", defaultActivity, "Activity to exercise")
		students = flag.Int("students", defaultStudents, "Number of generated students")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		domain   = flag.String("domain", rostercheck.DefaultDomain, "Email domain for generated students")
		keep     = flag.Bool("keep", false, "Leave the generated students signed up")
		logFile  = flag.String("log", "", "Also write output to this file")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		rostercheck.ShowHelp()
		return
	}

	closer, err := rostercheck.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &rostercheck.Config{
		BaseURL:  *baseURL,
		Activity: *activity,
		Students: *students,
		Workers:  *workers,
		Timeout:  *timeout,
		Domain:   *domain,
		Keep:     *keep,
		Verbose:  *verbose,
	}

	if _, err := rostercheck.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Roster check failed: " + err.Error() + "\n")
		closer.Close()
		cancel()
		os.Exit(1)
	}
}
