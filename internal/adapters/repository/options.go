package repository

// Option applies a configuration option to Open.
type Option func(*settings)

type settings struct {
	syncWrites  bool
	withBreaker bool
	breakerOpts []BreakerOption
}

// WithSyncWrites controls whether the badger backend fsyncs every write.
// Defaults to true; the snapshot is the only durable copy of the model.
func WithSyncWrites(sync bool) Option {
	return func(s *settings) {
		s.syncWrites = sync
	}
}

// WithoutBreaker disables the circuit breaker decorator.
func WithoutBreaker() Option {
	return func(s *settings) {
		s.withBreaker = false
	}
}

// WithBreakerOptions passes options through to the breaker decorator.
func WithBreakerOptions(opts ...BreakerOption) Option {
	return func(s *settings) {
		s.breakerOpts = append(s.breakerOpts, opts...)
	}
}
