package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/mergington/activities/internal/domain/model"
	"github.com/mergington/activities/pkg/metrics"
)

const memoryBackend = "memory"

// MemStore is an in-process Store guarded by a RWMutex.
// State lives only as long as the process.
type MemStore struct {
	mu         sync.RWMutex
	order      []string
	activities map[string]*model.Activity
	opts       options
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemStore{
		activities: make(map[string]*model.Activity),
		opts:       o,
	}
}

// Seed replaces the registry contents with activities.
func (s *MemStore) Seed(_ context.Context, activities []model.Activity) error {
	defer observe(memoryBackend, "seed", time.Now())

	order := make([]string, 0, len(activities))
	byName := make(map[string]*model.Activity, len(activities))
	for _, a := range activities {
		if _, dup := byName[a.Name]; !dup {
			order = append(order, a.Name)
		}
		c := a.Clone()
		byName[a.Name] = &c
	}

	s.mu.Lock()
	s.order = order
	s.activities = byName
	s.mu.Unlock()
	return nil
}

// List returns a snapshot of all activities in seed order.
func (s *MemStore) List(_ context.Context) ([]model.Activity, error) {
	defer observe(memoryBackend, "list", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Activity, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.activities[name].Clone())
	}
	return out, nil
}

// Get returns a snapshot of one activity.
func (s *MemStore) Get(_ context.Context, name string) (model.Activity, error) {
	defer observe(memoryBackend, "get", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.activities[name]
	if !ok {
		return model.Activity{}, ErrActivityNotFound
	}
	return a.Clone(), nil
}

// Signup appends email to the roster of the named activity.
func (s *MemStore) Signup(_ context.Context, name, email string) error {
	defer observe(memoryBackend, "signup", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[name]
	if !ok {
		return ErrActivityNotFound
	}
	if a.HasParticipant(email) {
		return ErrAlreadySignedUp
	}
	if s.opts.enforceCapacity && len(a.Participants) >= a.MaxParticipants {
		return ErrActivityFull
	}
	a.Participants = append(a.Participants, email)
	return nil
}

// Unregister removes email from the roster of the named activity.
func (s *MemStore) Unregister(_ context.Context, name, email string) error {
	defer observe(memoryBackend, "unregister", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[name]
	if !ok {
		return ErrActivityNotFound
	}
	idx := slices.Index(a.Participants, email)
	if idx < 0 {
		return ErrNotRegistered
	}
	a.Participants = slices.Delete(a.Participants, idx, idx+1)
	return nil
}

// Close is a no-op for the memory store.
func (s *MemStore) Close() error {
	return nil
}

func observe(backend, op string, start time.Time) {
	metrics.RecordStoreLatency(backend, op, float64(time.Since(start).Microseconds())/1000)
}
