package async

import "context"

// Future represents the eventual outcome of one asynchronous operation.
type Future struct {
	err  error
	done chan struct{}
}

// Await blocks until the operation completes and returns its error, if any.
func (f *Future) Await() error {
	<-f.done
	return f.err
}

// Go runs fn in its own goroutine and returns a Future resolving to its
// error. If ctx is already canceled the future resolves immediately with
// ctx.Err() without spawning work.
func Go(ctx context.Context, fn func(context.Context) error) *Future {
	f := &Future{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.err = fn(ctx)
	}()

	return f
}

// Join waits for every future to complete and returns the collected errors,
// index-aligned with the input. Unlike fail-fast join helpers it always
// drains all futures: a nil entry means that operation succeeded.
func Join(futures ...*Future) []error {
	errs := make([]error, len(futures))
	for i, f := range futures {
		errs[i] = f.Await()
	}
	return errs
}
