package rostercheck

import (
	"context"
	"fmt"
	"time"

	"github.com/mergington/activities/pkg/logger"
)

// Run executes the complete roster check and returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get()
	stats := &Stats{StartTime: time.Now(), Students: cfg.Students}
	if cfg.Domain == "" {
		cfg.Domain = DefaultDomain
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	log.Info(ctx, "starting roster check",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("activity", cfg.Activity),
		logger.Int("students", cfg.Students),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Record the roster before touching it
	before, err := fetchRoster(ctx, client, cfg.Activity)
	if err != nil {
		return stats, err
	}
	baseline := before.Participants
	stats.BaselineRoster = len(baseline)

	// Step 3: Sign every student up twice at once
	emails := generateEmails(cfg.Students, cfg.Domain)
	signups := submit(ctx, cfg, doubled(emails), client.Signup)
	stats.Signups = int(signups.ok.Load())
	stats.Duplicates = int(signups.duplicate.Load())
	stats.Full = int(signups.full.Load())
	stats.Failed = int(signups.failed.Load())
	log.Info(ctx, "signups submitted",
		logger.Int("accepted", stats.Signups),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("full", stats.Full),
		logger.Int("failed", stats.Failed))

	// unsent emails are not counted, so the tallies below mean nothing
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("signup interrupted: %w", err)
	}
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%d signup requests failed", stats.Failed)
	}
	// each student is either accepted once and rejected once as a duplicate,
	// or turned away twice because the roster was full
	if stats.Signups+stats.Full/2 != cfg.Students || stats.Duplicates != stats.Signups {
		return stats, fmt.Errorf("%w: %d accepted and %d duplicates for %d students",
			ErrRosterMismatch, stats.Signups, stats.Duplicates, cfg.Students)
	}

	// Step 4: Verify the listing
	after, err := fetchRoster(ctx, client, cfg.Activity)
	if err != nil {
		return stats, err
	}
	if err := verifyRoster(after.Participants, baseline, signups.accepted); err != nil {
		return stats, fmt.Errorf("after signup: %w", err)
	}
	log.Info(ctx, "roster verified after signup", logger.Int("participants", len(after.Participants)))

	if !cfg.Keep {
		// Step 5: Unregister everyone we added
		removed := submit(ctx, cfg, signups.accepted, client.Unregister)
		stats.Unregistered = int(removed.ok.Load())
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("unregister interrupted: %w", err)
		}
		if n := removed.duplicate.Load() + removed.failed.Load(); n > 0 {
			return stats, fmt.Errorf("%d unregister requests failed", n)
		}

		// Step 6: The roster should be back where it started
		final, err := fetchRoster(ctx, client, cfg.Activity)
		if err != nil {
			return stats, err
		}
		if err := verifyRoster(final.Participants, baseline, nil); err != nil {
			return stats, fmt.Errorf("after unregister: %w", err)
		}
		log.Info(ctx, "roster restored", logger.Int("participants", len(final.Participants)))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	log.Info(ctx, "roster check completed successfully")
	return stats, nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var requestsPerSecond, acceptRate float64
	requests := stats.Signups + stats.Duplicates + stats.Full + stats.Failed + stats.Unregistered
	if stats.Duration > 0 {
		requestsPerSecond = float64(requests) / stats.Duration.Seconds()
	}
	if stats.Students > 0 {
		acceptRate = float64(stats.Signups) / float64(stats.Students) * percentageMultiplier
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("students", stats.Students),
		logger.Int("signups", stats.Signups),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("full", stats.Full),
		logger.Int("unregistered", stats.Unregistered),
		logger.Int("baselineRoster", stats.BaselineRoster),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
