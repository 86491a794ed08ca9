package dataflow

import (
	"context"
	"sync"
	"time"
)

// Stream is a read-only channel of messages.
type Stream[T any] <-chan T

// From creates a stream from a slice of data.
func From[T any](ctx context.Context, items ...T) Stream[T] {
	out := make(chan T, len(items))
	go func() {
		defer close(out)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}()
	return out
}

// attempt runs fn with the configured retries. It returns ctx.Err() when
// cancelled during a backoff.
func attempt(ctx context.Context, cfg *config, fn func() error) error {
	err := fn()
	for i := 1; err != nil && i <= cfg.maxRetries; i++ {
		if cfg.backoff != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.backoff(i)):
			}
		}
		err = fn()
	}
	return err
}

// run starts cfg.workers goroutines draining input and returns a channel
// closed once they have all exited.
func run[T any](ctx context.Context, cfg *config, input Stream[T], handle func(T)) <-chan struct{} {
	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					return
				}
				handle(msg)
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

// Map transforms the stream using the provided function.
// Supports parallelism via WithWorkers; output order is not preserved when
// more than one worker runs. Items whose fn fails are dropped after the
// error handler sees them.
func Map[In, Out any](ctx context.Context, input Stream[In], fn func(In) (Out, error), opts ...Option) Stream[Out] {
	cfg := newConfig(opts)
	out := make(chan Out, cfg.bufferSize)

	done := run(ctx, cfg, input, func(msg In) {
		var res Out
		err := attempt(ctx, cfg, func() error {
			var err error
			res, err = fn(msg)
			return err
		})
		if err != nil {
			if cfg.errorHandler != nil {
				cfg.errorHandler(err)
			}
			return
		}
		select {
		case <-ctx.Done():
		case out <- res:
		}
	})

	go func() {
		<-done
		close(out)
	}()
	return out
}

// Filter keeps items where fn returns true.
func Filter[T any](ctx context.Context, input Stream[T], fn func(T) bool, opts ...Option) Stream[T] {
	cfg := newConfig(opts)
	out := make(chan T, cfg.bufferSize)

	done := run(ctx, cfg, input, func(msg T) {
		if !fn(msg) {
			return
		}
		select {
		case <-ctx.Done():
		case out <- msg:
		}
	})

	go func() {
		<-done
		close(out)
	}()
	return out
}

// Batch groups consecutive items into slices of at most size items. The
// last batch may be shorter.
func Batch[T any](ctx context.Context, input Stream[T], size int) Stream[[]T] {
	if size < 1 {
		size = 1
	}
	out := make(chan []T)
	go func() {
		defer close(out)
		batch := make([]T, 0, size)
		flush := func() bool {
			if len(batch) == 0 {
				return true
			}
			select {
			case <-ctx.Done():
				return false
			case out <- batch:
			}
			batch = make([]T, 0, size)
			return true
		}
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					flush()
					return
				}
				batch = append(batch, msg)
				if len(batch) == size && !flush() {
					return
				}
			}
		}
	}()
	return out
}

// ForEach executes an action for every item in the stream.
// It blocks until the stream is exhausted or context cancelled, and returns
// the first unhandled error.
func ForEach[T any](ctx context.Context, input Stream[T], fn func(T) error, opts ...Option) error {
	cfg := newConfig(opts)

	var errOnce sync.Once
	var firstErr error

	done := run(ctx, cfg, input, func(msg T) {
		err := attempt(ctx, cfg, func() error { return fn(msg) })
		if err == nil {
			return
		}
		if cfg.errorHandler != nil && cfg.errorHandler(err) {
			return
		}
		errOnce.Do(func() {
			firstErr = err
		})
	})
	<-done

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return firstErr
}
