// Package flush drains state snapshots to the durable store.
package flush

import "time"

// Option applies a configuration option to the Flusher.
type Option func(*Flusher)

// WithCapacity sets how many pending triggers the flusher buffers.
func WithCapacity(n int) Option {
	return func(f *Flusher) {
		if n > 0 {
			f.capacity = n
		}
	}
}

// WithDebounce sets how long a trigger coalesces follow-up triggers.
func WithDebounce(d time.Duration) Option {
	return func(f *Flusher) {
		if d >= 0 {
			f.debounce = d
		}
	}
}

// WithSaveTimeout bounds a single store save.
func WithSaveTimeout(d time.Duration) Option {
	return func(f *Flusher) {
		if d > 0 {
			f.saveTimeout = d
		}
	}
}

// WithName sets the flusher name for logging.
func WithName(name string) Option {
	return func(f *Flusher) {
		if name != "" {
			f.name = name
		}
	}
}
