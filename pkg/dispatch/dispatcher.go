package dispatch

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/hookrelay/pkg/queue"
	"github.com/dmitrymomot/hookrelay/pkg/registry"
	"github.com/dmitrymomot/hookrelay/pkg/transport"
)

// Protocol headers attached to every delivery. Subscriber-supplied custom
// headers can never override these two.
const (
	HeaderKey       = "X-Hookrelay-Key"
	HeaderSignature = "X-Hookrelay-Signature"
)

// Dispatcher is the webhook dispatch engine. Create with New, then use the
// Send* methods to produce notifications and Start to consume them.
type Dispatcher struct {
	registry registry.Registry
	driver   queue.Driver
	cfg      Config
	logger   *slog.Logger

	httpTransport   transport.Transport
	lambdaTransport transport.Transport

	batcher *batcher
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithHTTPTransport replaces the HTTP delivery transport.
func WithHTTPTransport(t transport.Transport) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.httpTransport = t
		}
	}
}

// WithLambdaTransport replaces the Lambda delivery transport.
func WithLambdaTransport(t transport.Transport) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.lambdaTransport = t
		}
	}
}

// New creates a Dispatcher on top of an app registry and a queue driver.
func New(reg registry.Registry, driver queue.Driver, cfg Config, opts ...Option) *Dispatcher {
	if cfg.ProcessID == "" {
		cfg.ProcessID = uuid.NewString()
	}

	d := &Dispatcher{
		registry: reg,
		driver:   driver,
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.httpTransport == nil {
		d.httpTransport = transport.NewHTTP()
	}
	if d.lambdaTransport == nil {
		d.lambdaTransport = transport.NewLambda(transport.WithDefaultRegion(cfg.DefaultRegion))
	}

	d.batcher = newBatcher(cfg.BatchingDuration, d.flushBatch)
	return d
}

// userAgent identifies this worker instance to subscribers.
func (d *Dispatcher) userAgent() string {
	return fmt.Sprintf("HookrelayHTTPClient/1.0 (Process: %s)", d.cfg.ProcessID)
}

// buildHeaders merges the base protocol headers with subscription-specific
// custom headers. The key and signature headers are set last so custom
// headers cannot shadow them.
func (d *Dispatcher) buildHeaders(custom map[string]string, appKey, sig string) map[string]string {
	headers := map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
		"User-Agent":   d.userAgent(),
	}
	for k, v := range custom {
		headers[k] = v
	}
	headers[HeaderKey] = appKey
	headers[HeaderSignature] = sig
	return headers
}
