package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/hookrelay/pkg/hook"
)

// RedisConfig describes the Redis connection used by the Redis queue driver.
type RedisConfig struct {
	ConnectionURL  string        `env:"HOOKRELAY_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"HOOKRELAY_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"HOOKRELAY_REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"HOOKRELAY_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Connect establishes a Redis connection with retries, pinging the server
// before handing the client out.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}

	for range cfg.RetryAttempts {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, ErrRedisNotReady
}

// Redis is a queue driver backed by Redis lists, one list per queue. Jobs
// are pushed with RPUSH and consumed with BLPOP, preserving FIFO order.
// Multiple worker processes may consume the same queues; Redis hands each
// job to exactly one of them per delivery.
type Redis struct {
	client      redis.UniversalClient
	logger      *slog.Logger
	maxAttempts int
	keyPrefix   string
	pollTimeout time.Duration

	mu       sync.Mutex
	handlers map[string]Handler
	started  bool

	ctx    context.Context
	cancel context.CancelFunc
	sem    chan struct{}
	wg     sync.WaitGroup
}

// NewRedis creates a Redis queue driver on top of an established client.
func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Redis{
		client:      client,
		logger:      options.logger,
		maxAttempts: options.maxAttempts,
		keyPrefix:   options.keyPrefix,
		pollTimeout: options.pollTimeout,
		handlers:    make(map[string]Handler),
		sem:         make(chan struct{}, options.concurrency),
	}
}

// Enqueue pushes a job onto the named queue's list.
func (r *Redis) Enqueue(ctx context.Context, queue string, job hook.Job) error {
	if queue == "" {
		return ErrQueueNameEmpty
	}
	return r.push(ctx, queue, message{Job: job})
}

func (r *Redis) push(ctx context.Context, queue string, msg message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal queue message: %w", err)
	}
	if err := r.client.RPush(ctx, r.key(queue), data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job to %q: %w", queue, err)
	}
	return nil
}

// Process registers the handler for one queue. Must be called before Start.
func (r *Redis) Process(queue string, h Handler) error {
	if queue == "" {
		return ErrQueueNameEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[queue]; exists {
		return ErrHandlerExists
	}
	r.handlers[queue] = h
	return nil
}

// Start launches one blocking-pop loop per registered queue.
func (r *Redis) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrAlreadyStarted
	}
	if len(r.handlers) == 0 {
		return ErrNoHandlers
	}

	r.ctx, r.cancel = context.WithCancel(ctx)
	r.started = true

	for queue, h := range r.handlers {
		r.wg.Add(1)
		go r.consume(queue, h)
	}
	return nil
}

// Stop cancels the consume loops and waits for in-flight handlers.
func (r *Redis) Stop() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return ErrNotStarted
	}
	r.started = false
	cancel := r.cancel
	r.mu.Unlock()

	cancel()
	r.wg.Wait()
	return nil
}

func (r *Redis) consume(queue string, h Handler) {
	defer r.wg.Done()

	key := r.key(queue)
	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		res, err := r.client.BLPop(r.ctx, r.pollTimeout, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			r.logger.Error("failed to pop job from redis",
				slog.String("queue", queue),
				slog.String("error", err.Error()))

			select {
			case <-r.ctx.Done():
				return
			case <-time.After(r.pollTimeout):
			}
			continue
		}
		if len(res) < 2 {
			continue
		}

		var msg message
		if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
			r.logger.Error("discarding malformed queue message",
				slog.String("queue", queue),
				slog.String("error", err.Error()))
			continue
		}

		select {
		case r.sem <- struct{}{}:
		case <-r.ctx.Done():
			// Already popped; push back so the job is not lost.
			if err := r.push(context.WithoutCancel(r.ctx), queue, msg); err != nil {
				r.logger.Error("failed to return job to redis on shutdown",
					slog.String("queue", queue),
					slog.String("error", err.Error()))
			}
			return
		}

		r.wg.Add(1)
		go func(msg message) {
			defer r.wg.Done()
			defer func() { <-r.sem }()
			r.handle(queue, h, msg)
		}(msg)
	}
}

func (r *Redis) handle(queue string, h Handler, msg message) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("queue handler panicked",
				slog.String("queue", queue),
				slog.Any("panic", rec))
		}
	}()

	ctx := context.WithoutCancel(r.ctx)
	err := h(ctx, msg.Job)
	if err == nil {
		return
	}

	msg.Attempts++
	if msg.Attempts >= r.maxAttempts {
		r.logger.Warn("job dropped after exhausting delivery attempts",
			slog.String("queue", queue),
			slog.String("app_key", msg.Job.AppKey),
			slog.Int("attempts", msg.Attempts),
			slog.String("error", err.Error()))
		return
	}

	if err := r.push(ctx, queue, msg); err != nil {
		r.logger.Error("failed to requeue job",
			slog.String("queue", queue),
			slog.String("error", err.Error()))
	}
}

func (r *Redis) key(queue string) string {
	return r.keyPrefix + queue
}
