package dataflow

import (
	"time"
)

// Option configures the behavior of pipeline stages.
type Option func(*config)

type config struct {
	workers    int
	maxRetries int
	backoff    func(int) time.Duration
	bufferSize int
	// errorHandler returns true when the error is handled and the item
	// should be skipped. Unhandled errors are dropped by Map and reported by
	// ForEach.
	errorHandler func(error) bool
}

func newConfig(opts []Option) *config {
	cfg := &config{workers: 1}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// WithWorkers sets the number of concurrent workers for a stage.
// Default is 1 (sequential).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithBufferSize sets the buffer size for the output channel of a stage.
func WithBufferSize(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.bufferSize = n
		}
	}
}

// WithRetry enables retry logic for the stage operation.
func WithRetry(maxRetries int, backoff func(attempt int) time.Duration) Option {
	return func(c *config) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// WithErrorHandler sets a custom error handler.
// If the handler returns true, the error is considered handled and the item is skipped.
func WithErrorHandler(h func(error) bool) Option {
	return func(c *config) {
		c.errorHandler = h
	}
}

// ConstantBackoff waits d between every attempt.
func ConstantBackoff(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}

// ExponentialBackoff doubles the wait on every retry, starting at base and
// never exceeding max. Retries are numbered from 1.
func ExponentialBackoff(base, max time.Duration) func(int) time.Duration {
	return func(retry int) time.Duration {
		d := base
		for i := 1; i < retry && d < max; i++ {
			d *= 2
		}
		return min(d, max)
	}
}
