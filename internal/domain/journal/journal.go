// Package journal keeps a bounded, in-memory log of recent roster changes.
package journal

import (
	"context"
	"slices"
	"sync"

	"github.com/mergington/activities/internal/domain/model"
	"github.com/mergington/activities/pkg/metrics"
)

const defaultCapacity = 1000

// Journal retains the most recent roster changes up to a fixed capacity.
//
// Several workers record concurrently, so changes may arrive out of order.
// Entries are kept sorted by Seq and the lowest Seq is evicted once the
// capacity is reached. Changes with equal Seq keep arrival order.
type Journal struct {
	mu       sync.RWMutex
	entries  []model.RosterChange // ascending Seq
	capacity int
}

// New creates a journal holding at most capacity changes.
// A non-positive capacity falls back to the default.
func New(capacity int) *Journal {
	if capacity < 1 {
		capacity = defaultCapacity
	}
	return &Journal{
		entries:  make([]model.RosterChange, 0, capacity+1),
		capacity: capacity,
	}
}

// Record inserts a change at its Seq position, evicting the oldest change
// when full.
func (j *Journal) Record(_ context.Context, c model.RosterChange) error {
	j.mu.Lock()
	// late arrivals are rare and land near the end
	i := len(j.entries)
	for i > 0 && j.entries[i-1].Seq > c.Seq {
		i--
	}
	j.entries = slices.Insert(j.entries, i, c)
	if len(j.entries) > j.capacity {
		j.entries = slices.Delete(j.entries, 0, 1)
	}
	size := len(j.entries)
	j.mu.Unlock()

	metrics.UpdateJournalSize(size)
	return nil
}

// Recent returns up to n changes, newest first.
func (j *Journal) Recent(_ context.Context, n int) []model.RosterChange {
	j.mu.RLock()
	defer j.mu.RUnlock()

	n = min(n, len(j.entries))
	if n <= 0 {
		return []model.RosterChange{}
	}
	out := make([]model.RosterChange, 0, n)
	for i := len(j.entries) - 1; len(out) < n; i-- {
		out = append(out, j.entries[i])
	}
	return out
}

// Len returns the number of retained changes.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}
