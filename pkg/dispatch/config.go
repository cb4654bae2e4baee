package dispatch

import "time"

// Config is the engine's runtime configuration, typically populated from
// the environment via the config package.
type Config struct {
	// Debug enables verbose per-delivery logging.
	Debug bool `env:"HOOKRELAY_DEBUG" envDefault:"false"`

	// BatchingEnabled merges events raised within BatchingDuration into a
	// single queued job per app and queue context.
	BatchingEnabled  bool          `env:"HOOKRELAY_BATCHING_ENABLED" envDefault:"false"`
	BatchingDuration time.Duration `env:"HOOKRELAY_BATCHING_DURATION" envDefault:"50ms"`

	// ProcessID identifies this worker instance in the outgoing
	// User-Agent. A random identifier is generated when left empty.
	ProcessID string `env:"HOOKRELAY_PROCESS_ID"`

	// DefaultRegion is used for Lambda subscriptions without an explicit
	// region.
	DefaultRegion string `env:"HOOKRELAY_LAMBDA_REGION" envDefault:"us-east-1"`
}
