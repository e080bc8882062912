package service

import (
	"github.com/mergington/activities/internal/adapters/repository"
	"github.com/mergington/activities/internal/domain/model"
	"github.com/mergington/activities/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the registry store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSeed sets the activities the registry starts from.
// Defaults to the built-in catalog.
func WithSeed(activities []model.Activity) Option {
	return func(s *Service) {
		if activities != nil {
			s.seed = activities
		}
	}
}

// WithChangeQueueSize sets the capacity of the roster change queue.
func WithChangeQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithChangeWorkerCount sets the number of change workers.
func WithChangeWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithChangeLogSize sets how many roster changes the journal retains.
func WithChangeLogSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.changeLogSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
