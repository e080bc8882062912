// Package service provides the activity registry service behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	changequeue "github.com/mergington/activities/internal/adapters/mq/queue"
	workerpool "github.com/mergington/activities/internal/adapters/mq/worker"
	"github.com/mergington/activities/internal/adapters/repository"
	"github.com/mergington/activities/internal/domain/catalog"
	"github.com/mergington/activities/internal/domain/journal"
	"github.com/mergington/activities/internal/domain/model"
	"github.com/mergington/activities/pkg/logger"
	"github.com/mergington/activities/pkg/metrics"
)

const (
	defaultQueueSize     = 1024
	defaultWorkerCount   = 2
	defaultChangeLogSize = 1000
)

// Stats is a point-in-time view of the service.
type Stats struct {
	Started       bool `json:"started"`
	Activities    int  `json:"activities"`
	Participants  int  `json:"participants"`
	QueueLength   int  `json:"queue_length"`
	QueueCapacity int  `json:"queue_capacity"`
	Workers       int  `json:"workers"`
	ChangesLogged int  `json:"changes_logged"`
}

// Service owns the activity registry and the roster change feed.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	seed    []model.Activity
	changes *changequeue.InMemoryQueue
	journal *journal.Journal
	pool    *workerpool.Pool

	queueSize     int
	workerCount   int
	changeLogSize int

	seq atomic.Uint64

	started bool
	stopped bool
	cancel  context.CancelFunc

	logger logger.Logger
	now    func() time.Time
}

// New constructs a Service. The change queue and journal exist from the
// start, so mutations made before Start are still recorded once workers run.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:     defaultQueueSize,
		workerCount:   defaultWorkerCount,
		changeLogSize: defaultChangeLogSize,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	if s.seed == nil {
		s.seed = catalog.Default()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.changes = changequeue.NewInMemoryQueue(changequeue.WithCapacity(s.queueSize))
	s.journal = journal.New(s.changeLogSize)
	return s
}

// Start seeds the registry and starts the change workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.stopped {
		return errors.New("service already stopped")
	}

	s.logger.Info(ctx, "starting activities service...")

	if err := s.store.Seed(ctx, s.seed); err != nil {
		return fmt.Errorf("seed registry: %w", err)
	}
	s.logger.Info(ctx, "registry seeded", logger.Int("activities", len(s.seed)))

	// workers outlive the start request
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool = workerpool.NewPool(s.workerCount, s.changes, s.journal)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "activities service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("changeLogSize", s.changeLogSize),
	)
	return nil
}

// Stop drains the change feed and releases the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping activities service...")

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop change workers: %w", err))
	}
	s.cancel()
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}

	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "activities service stopped")
	return errors.Join(errs...)
}

// ListActivities returns a snapshot of every activity in seed order.
func (s *Service) ListActivities(ctx context.Context) ([]model.Activity, error) {
	activities, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// Signup registers email for the named activity and returns the
// confirmation message.
func (s *Service) Signup(ctx context.Context, activity, email string) (string, error) {
	email, err := s.normalize(ctx, model.ChangeSignup, activity, email)
	if err != nil {
		return "", err
	}

	if err := s.store.Signup(ctx, activity, email); err != nil {
		s.reject(ctx, model.ChangeSignup, activity, email, err)
		return "", err
	}

	metrics.RecordSignup()
	s.logger.Info(ctx, "student signed up",
		logger.String("activity", activity),
		logger.String("email", email),
	)
	s.publish(ctx, model.ChangeSignup, activity, email)
	return fmt.Sprintf("Signed up %s for %s", email, activity), nil
}

// Unregister removes email from the named activity and returns the
// confirmation message.
func (s *Service) Unregister(ctx context.Context, activity, email string) (string, error) {
	email, err := s.normalize(ctx, model.ChangeUnregister, activity, email)
	if err != nil {
		return "", err
	}

	if err := s.store.Unregister(ctx, activity, email); err != nil {
		s.reject(ctx, model.ChangeUnregister, activity, email, err)
		return "", err
	}

	metrics.RecordUnregistration()
	s.logger.Info(ctx, "student unregistered",
		logger.String("activity", activity),
		logger.String("email", email),
	)
	s.publish(ctx, model.ChangeUnregister, activity, email)
	return fmt.Sprintf("Unregistered %s from %s", email, activity), nil
}

// RecentChanges returns up to limit roster changes, newest first.
func (s *Service) RecentChanges(ctx context.Context, limit int) []model.RosterChange {
	return s.journal.Recent(ctx, limit)
}

// GetStats returns service statistics and refreshes the registry gauges.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	stats := Stats{
		Started:       s.started,
		QueueCapacity: s.queueSize,
		QueueLength:   s.changes.Len(ctx),
		ChangesLogged: s.journal.Len(),
	}
	if s.pool != nil && s.started {
		stats.Workers = s.pool.Size()
	}
	s.mu.RUnlock()

	activities, err := s.store.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("collect stats: %w", err)
	}
	stats.Activities = len(activities)
	for _, a := range activities {
		stats.Participants += len(a.Participants)
	}

	metrics.UpdateActivities(stats.Activities)
	metrics.UpdateParticipants(stats.Participants)
	return stats, nil
}

func (s *Service) publish(ctx context.Context, kind model.ChangeKind, activity, email string) {
	change := model.RosterChange{
		ID:       uuid.NewString(),
		Seq:      s.seq.Add(1),
		Kind:     kind,
		Activity: activity,
		Email:    email,
		At:       s.now().UTC(),
	}
	// the mutation already happened; a dropped change only loses its feed entry
	if err := s.changes.Enqueue(ctx, change); err != nil {
		s.logger.Warn(ctx, "roster change dropped",
			logger.String("kind", string(kind)),
			logger.String("activity", activity),
			logger.Error(err),
		)
	}
}

func (s *Service) reject(ctx context.Context, kind model.ChangeKind, activity, email string, err error) {
	metrics.RecordRejectedChange(string(kind), rejectReason(err))
	s.logger.Debug(ctx, "roster change rejected",
		logger.String("kind", string(kind)),
		logger.String("activity", activity),
		logger.String("email", email),
		logger.Error(err),
	)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrActivityNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrAlreadySignedUp):
		return "already_signed_up"
	case errors.Is(err, repository.ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, repository.ErrActivityFull):
		return "full"
	default:
		return "store_error"
	}
}

// normalize trims email. A blank email is only reported once the activity
// is known to exist, so an unknown activity is always a not-found error.
func (s *Service) normalize(ctx context.Context, kind model.ChangeKind, activity, email string) (string, error) {
	if activity == "" {
		return "", ErrNameRequired
	}
	email = strings.TrimSpace(email)
	if email != "" {
		return email, nil
	}
	if _, err := s.store.Get(ctx, activity); err != nil {
		s.reject(ctx, kind, activity, email, err)
		return "", err
	}
	return "", ErrEmailRequired
}
