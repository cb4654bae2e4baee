package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hookrelay/pkg/config"
	"github.com/dmitrymomot/hookrelay/pkg/dispatch"
)

func TestLoadDefaults(t *testing.T) {
	var cfg dispatch.Config
	require.NoError(t, config.Load(&cfg))

	assert.False(t, cfg.Debug)
	assert.False(t, cfg.BatchingEnabled)
	assert.Equal(t, 50*time.Millisecond, cfg.BatchingDuration)
	assert.Equal(t, "us-east-1", cfg.DefaultRegion)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HOOKRELAY_DEBUG", "true")
	t.Setenv("HOOKRELAY_BATCHING_ENABLED", "true")
	t.Setenv("HOOKRELAY_BATCHING_DURATION", "125ms")
	t.Setenv("HOOKRELAY_PROCESS_ID", "worker-7")
	t.Setenv("HOOKRELAY_LAMBDA_REGION", "eu-central-1")

	var cfg dispatch.Config
	require.NoError(t, config.Load(&cfg))

	assert.True(t, cfg.Debug)
	assert.True(t, cfg.BatchingEnabled)
	assert.Equal(t, 125*time.Millisecond, cfg.BatchingDuration)
	assert.Equal(t, "worker-7", cfg.ProcessID)
	assert.Equal(t, "eu-central-1", cfg.DefaultRegion)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("HOOKRELAY_BATCHING_DURATION", "not-a-duration")

	var cfg dispatch.Config
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoadNilPointer(t *testing.T) {
	t.Parallel()

	var cfg *dispatch.Config
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}

func TestMustLoadPanics(t *testing.T) {
	t.Setenv("HOOKRELAY_DEBUG", "definitely-not-bool")

	var cfg dispatch.Config
	assert.Panics(t, func() { config.MustLoad(&cfg) })
}
