package queue

import (
	"context"

	"github.com/dmitrymomot/hookrelay/pkg/hook"
)

// Handler processes one dequeued job. Returning nil acknowledges the job
// and retires it from the queue; an error leaves it eligible for
// redelivery. Handlers run concurrently and must be safe for that.
type Handler func(ctx context.Context, job hook.Job) error

// Driver is the queue contract the dispatch engine builds on. Register all
// consumers with Process before calling Start; Enqueue is safe at any time
// from any goroutine.
type Driver interface {
	// Enqueue appends a job to the named queue.
	Enqueue(ctx context.Context, queue string, job hook.Job) error

	// Process registers the handler consuming the named queue.
	Process(queue string, h Handler) error

	// Start launches the consumer loops. Consumption continues until Stop
	// is called or ctx is canceled.
	Start(ctx context.Context) error

	// Stop shuts consumption down, waiting for in-flight handlers.
	Stop() error
}

// message is the persisted form of a queued job: the job itself plus how
// many delivery attempts it has consumed.
type message struct {
	Job      hook.Job `json:"job"`
	Attempts int      `json:"attempts"`
}

// DefaultMaxAttempts caps redeliveries of one job before it is dropped.
const DefaultMaxAttempts = 3
