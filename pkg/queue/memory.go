package queue

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/hookrelay/pkg/hook"
)

// Memory is a process-local queue driver. Jobs enqueued before Start are
// buffered and consumed once the driver runs. FIFO per queue; handlers run
// concurrently up to the configured limit.
type Memory struct {
	logger      *slog.Logger
	maxAttempts int

	mu       sync.Mutex
	queues   map[string]*memQueue
	handlers map[string]Handler
	started  bool

	ctx    context.Context
	cancel context.CancelFunc
	sem    chan struct{}
	wg     sync.WaitGroup
}

type memQueue struct {
	mu     sync.Mutex
	items  []message
	signal chan struct{}
}

func newMemQueue() *memQueue {
	return &memQueue{signal: make(chan struct{}, 1)}
}

func (q *memQueue) push(msg message) {
	q.mu.Lock()
	q.items = append(q.items, msg)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *memQueue) pop() (message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return message{}, false
	}
	msg := q.items[0]
	q.items = q.items[1:]
	return msg, true
}

// NewMemory creates an in-memory queue driver.
func NewMemory(opts ...Option) *Memory {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Memory{
		logger:      options.logger,
		maxAttempts: options.maxAttempts,
		queues:      make(map[string]*memQueue),
		handlers:    make(map[string]Handler),
		sem:         make(chan struct{}, options.concurrency),
	}
}

// Enqueue appends a job to the named queue.
func (m *Memory) Enqueue(ctx context.Context, queue string, job hook.Job) error {
	if queue == "" {
		return ErrQueueNameEmpty
	}
	m.queueFor(queue).push(message{Job: job})
	return nil
}

// Process registers the handler for one queue. Must be called before Start.
func (m *Memory) Process(queue string, h Handler) error {
	if queue == "" {
		return ErrQueueNameEmpty
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.handlers[queue]; exists {
		return ErrHandlerExists
	}
	m.handlers[queue] = h
	return nil
}

// Start launches one consumer loop per registered queue.
func (m *Memory) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if len(m.handlers) == 0 {
		return ErrNoHandlers
	}

	m.ctx, m.cancel = context.WithCancel(ctx)
	m.started = true

	for queue, h := range m.handlers {
		q := m.lockedQueueFor(queue)
		m.wg.Add(1)
		go m.consume(queue, q, h)
	}
	return nil
}

// Stop cancels consumption and waits for in-flight handlers to finish.
func (m *Memory) Stop() error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return ErrNotStarted
	}
	m.started = false
	cancel := m.cancel
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	return nil
}

func (m *Memory) consume(queue string, q *memQueue, h Handler) {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-q.signal:
		}

		for {
			msg, ok := q.pop()
			if !ok {
				break
			}

			select {
			case m.sem <- struct{}{}:
			case <-m.ctx.Done():
				// Not consumed; keep the job for a future run.
				q.push(msg)
				return
			}

			m.wg.Add(1)
			go func(msg message) {
				defer m.wg.Done()
				defer func() { <-m.sem }()
				m.handle(queue, q, h, msg)
			}(msg)
		}
	}
}

func (m *Memory) handle(queue string, q *memQueue, h Handler, msg message) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("queue handler panicked",
				slog.String("queue", queue),
				slog.Any("panic", r))
		}
	}()

	// Detached from the consumer lifecycle so a graceful Stop lets
	// in-flight jobs finish instead of aborting their deliveries.
	err := h(context.WithoutCancel(m.ctx), msg.Job)
	if err == nil {
		return
	}

	msg.Attempts++
	if msg.Attempts >= m.maxAttempts {
		m.logger.Warn("job dropped after exhausting delivery attempts",
			slog.String("queue", queue),
			slog.String("app_key", msg.Job.AppKey),
			slog.Int("attempts", msg.Attempts),
			slog.String("error", err.Error()))
		return
	}

	m.logger.Debug("job requeued for redelivery",
		slog.String("queue", queue),
		slog.String("app_key", msg.Job.AppKey),
		slog.Int("attempts", msg.Attempts))
	q.push(msg)
}

func (m *Memory) queueFor(name string) *memQueue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lockedQueueFor(name)
}

func (m *Memory) lockedQueueFor(name string) *memQueue {
	q, ok := m.queues[name]
	if !ok {
		q = newMemQueue()
		m.queues[name] = q
	}
	return q
}
