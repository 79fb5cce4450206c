package repository

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Backend names a Store implementation.
type Backend string

// Supported store backends.
const (
	BackendMemory Backend = "memory"
	BackendBadger Backend = "badger"
)

// Open constructs the Store for the configured backend. The returned close
// function releases backend resources; for the memory backend it is a no-op.
func Open(backend Backend, dir string, opts ...Option) (Store, func() error, error) {
	s := settings{syncWrites: true, withBreaker: true}

	// Apply all options
	for _, opt := range opts {
		opt(&s)
	}

	var store Store
	closer := func() error { return nil }

	switch backend {
	case BackendMemory, "":
		store = NewMemory()
	case BackendBadger:
		badgerOpts := badger.DefaultOptions(dir).WithSyncWrites(s.syncWrites)
		badgerOpts.Logger = nil // badger's own logger is too chatty for a service log

		db, err := badger.Open(badgerOpts)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger at %s: %w", dir, err)
		}
		store = NewBadger(db)
		closer = db.Close
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}

	if s.withBreaker {
		store = NewBreaker(store, s.breakerOpts...)
	}

	return store, closer, nil
}
