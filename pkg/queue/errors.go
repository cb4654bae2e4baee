package queue

import "errors"

var (
	// ErrAlreadyStarted is returned when Start is called on a running driver.
	ErrAlreadyStarted = errors.New("queue driver already started")

	// ErrNotStarted is returned when Stop is called before Start.
	ErrNotStarted = errors.New("queue driver not started")

	// ErrNoHandlers is returned when Start is called with no registered consumers.
	ErrNoHandlers = errors.New("no queue handlers registered")

	// ErrHandlerExists is returned when two handlers are registered for one queue.
	ErrHandlerExists = errors.New("handler already registered for queue")

	// ErrQueueNameEmpty is returned when an empty queue name is used.
	ErrQueueNameEmpty = errors.New("queue name cannot be empty")

	// ErrRedisNotReady is returned when the Redis connection cannot be
	// established within the configured retry attempts.
	ErrRedisNotReady = errors.New("redis connection is not ready")

	// ErrInvalidRedisURL is returned when the Redis connection URL cannot be parsed.
	ErrInvalidRedisURL = errors.New("failed to parse redis connection string")
)
