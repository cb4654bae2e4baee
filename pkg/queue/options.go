package queue

import (
	"log/slog"
	"time"
)

// Option configures a queue driver. Options not applicable to a driver are
// ignored by it.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	maxAttempts int
	concurrency int
	keyPrefix   string
	pollTimeout time.Duration
}

func defaultOptions() *options {
	return &options{
		logger:      slog.Default(),
		maxAttempts: DefaultMaxAttempts,
		concurrency: 10,
		keyPrefix:   "hookrelay:queue:",
		pollTimeout: time.Second,
	}
}

// WithLogger sets the driver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxAttempts caps delivery attempts per job before it is dropped.
func WithMaxAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithConcurrency limits how many handlers run at once per driver.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithKeyPrefix sets the Redis key namespace for queue lists.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.keyPrefix = prefix
		}
	}
}

// WithPollTimeout sets the blocking-pop timeout of the Redis consume loop.
// Shorter values make shutdown snappier at the cost of more round trips.
func WithPollTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollTimeout = d
		}
	}
}
