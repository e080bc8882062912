// Package repository defines the activity registry store and its implementations.
package repository

import (
	"context"

	"github.com/mergington/activities/internal/domain/model"
)

// Store provides read/write access to the activity registry.
// Implementations must make Signup and Unregister atomic check-then-mutate
// steps that are safe under concurrent callers.
type Store interface {
	// Seed initializes the registry with the given activities.
	Seed(ctx context.Context, activities []model.Activity) error

	// List returns a snapshot of all activities in seed order.
	List(ctx context.Context) ([]model.Activity, error)

	// Get returns a snapshot of one activity.
	// Returns ErrActivityNotFound if the name is unknown.
	Get(ctx context.Context, name string) (model.Activity, error)

	// Signup appends email to the activity's roster.
	// Returns ErrActivityNotFound, ErrAlreadySignedUp or, when capacity is
	// enforced, ErrActivityFull.
	Signup(ctx context.Context, name, email string) error

	// Unregister removes email from the activity's roster.
	// Returns ErrActivityNotFound or ErrNotRegistered.
	Unregister(ctx context.Context, name, email string) error

	// Close releases resources held by the store.
	Close() error
}
