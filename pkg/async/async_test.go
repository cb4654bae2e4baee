package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hookrelay/pkg/async"
)

func TestGoAwait(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		f := async.Go(context.Background(), func(ctx context.Context) error {
			return nil
		})
		require.NoError(t, f.Await())
	})

	t.Run("error propagates", func(t *testing.T) {
		t.Parallel()

		want := errors.New("delivery failed")
		f := async.Go(context.Background(), func(ctx context.Context) error {
			return want
		})
		assert.ErrorIs(t, f.Await(), want)
	})

	t.Run("pre-canceled context skips work", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var ran atomic.Bool
		f := async.Go(ctx, func(ctx context.Context) error {
			ran.Store(true)
			return nil
		})
		assert.ErrorIs(t, f.Await(), context.Canceled)
		assert.False(t, ran.Load())
	})

	t.Run("await is idempotent", func(t *testing.T) {
		t.Parallel()

		want := errors.New("boom")
		f := async.Go(context.Background(), func(ctx context.Context) error {
			return want
		})
		assert.ErrorIs(t, f.Await(), want)
		assert.ErrorIs(t, f.Await(), want)
	})
}

func TestJoinCollectsAllResults(t *testing.T) {
	t.Parallel()

	errSlow := errors.New("slow endpoint")

	var completed atomic.Int32
	futures := []*async.Future{
		async.Go(context.Background(), func(ctx context.Context) error {
			completed.Add(1)
			return nil
		}),
		async.Go(context.Background(), func(ctx context.Context) error {
			time.Sleep(20 * time.Millisecond)
			completed.Add(1)
			return errSlow
		}),
		async.Go(context.Background(), func(ctx context.Context) error {
			time.Sleep(40 * time.Millisecond)
			completed.Add(1)
			return nil
		}),
	}

	errs := async.Join(futures...)

	// Join must wait for every future, even after seeing an error.
	assert.Equal(t, int32(3), completed.Load())
	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], errSlow)
	assert.NoError(t, errs[2])
}

func TestJoinEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, async.Join())
}
