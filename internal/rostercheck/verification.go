package rostercheck

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrRosterMismatch indicates the listing disagrees with what the run did.
	ErrRosterMismatch = errors.New("roster mismatch")
	// ErrUnknownActivity indicates the exercised activity is not listed.
	ErrUnknownActivity = errors.New("activity not listed")
)

// fetchRoster returns the current participants of the configured activity.
func fetchRoster(ctx context.Context, c *Client, activity string) (Activity, error) {
	listing, err := c.Activities(ctx)
	if err != nil {
		return Activity{}, err
	}
	a, ok := listing[activity]
	if !ok {
		return Activity{}, fmt.Errorf("%w: %q", ErrUnknownActivity, activity)
	}
	return a, nil
}

// verifyRoster checks that roster is exactly baseline followed by the
// expected additions, with no email listed twice.
func verifyRoster(roster, baseline, added []string) error {
	seen := make(map[string]bool, len(roster))
	for _, p := range roster {
		if seen[p] {
			return fmt.Errorf("%w: %s listed twice", ErrRosterMismatch, p)
		}
		seen[p] = true
	}

	if len(roster) != len(baseline)+len(added) {
		return fmt.Errorf("%w: %d participants listed, want %d",
			ErrRosterMismatch, len(roster), len(baseline)+len(added))
	}
	if !slices.Equal(roster[:len(baseline)], baseline) {
		return fmt.Errorf("%w: original participants changed", ErrRosterMismatch)
	}
	for _, email := range added {
		if !seen[email] {
			return fmt.Errorf("%w: %s missing", ErrRosterMismatch, email)
		}
	}
	return nil
}
