// Package repository defines the activity registry store and its implementations.
package repository

const defaultKeyPrefix = "activities:"

type options struct {
	enforceCapacity bool
	keyPrefix       string
	preserveState   bool
}

func defaultOptions() options {
	return options{keyPrefix: defaultKeyPrefix}
}

// Option applies a configuration option to a Store implementation.
type Option func(*options)

// WithCapacityEnforcement rejects signups once an activity's roster reaches
// max_participants. Disabled by default.
func WithCapacityEnforcement(enabled bool) Option {
	return func(o *options) {
		o.enforceCapacity = enabled
	}
}

// WithKeyPrefix sets the key namespace used by the Redis store.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.keyPrefix = prefix
		}
	}
}

// WithPreserveState makes Seed on the Redis store keep activities that
// already exist instead of resetting them. Ignored by the memory store.
func WithPreserveState(enabled bool) Option {
	return func(o *options) {
		o.preserveState = enabled
	}
}
