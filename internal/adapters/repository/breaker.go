package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/use-overseer/Orquesta/internal/domain/model"
	"github.com/use-overseer/Orquesta/pkg/logger"
	"github.com/use-overseer/Orquesta/pkg/metrics"
)

// Default circuit breaker configuration values.
const (
	defaultFailureThreshold = 5
	defaultRecoveryTimeout  = 30 * time.Second
	breakerName             = "state-store"
)

// BreakerOption applies a configuration option to the Breaker.
type BreakerOption func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the circuit.
func WithFailureThreshold(n uint32) BreakerOption {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithRecoveryTimeout sets how long the circuit stays open before probing.
func WithRecoveryTimeout(d time.Duration) BreakerOption {
	return func(b *Breaker) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// Breaker decorates a Store with a circuit breaker so a dead backend fails
// fast with ErrUnavailable instead of stalling every request on it.
type Breaker struct {
	store     Store
	threshold uint32
	timeout   time.Duration
	cb        *gobreaker.CircuitBreaker[any]
}

var _ Store = (*Breaker)(nil)

// NewBreaker wraps store with a circuit breaker.
func NewBreaker(store Store, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		store:     store,
		threshold: defaultFailureThreshold,
		timeout:   defaultRecoveryTimeout,
	}

	// Apply all options
	for _, opt := range opts {
		opt(b)
	}

	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    breakerName,
		Timeout: b.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= b.threshold
		},
		// A missing record is a lookup result, not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Get().Warn(context.Background(), "store circuit state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
			metrics.UpdateBreakerOpen(to == gobreaker.StateOpen)
		},
	})

	return b
}

// execute runs fn through the breaker, mapping rejections to ErrUnavailable.
func (b *Breaker) execute(fn func() (any, error)) (any, error) {
	out, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open: %v", ErrUnavailable, err)
		}
		if !errors.Is(err, ErrNotFound) {
			metrics.RecordStoreError()
		}
		return nil, err
	}
	return out, nil
}

type snapshotPair struct {
	weights model.WeightVector
	history []model.HistoryEntry
}

// Load reads the snapshot through the breaker.
func (b *Breaker) Load(ctx context.Context) (model.WeightVector, []model.HistoryEntry, error) {
	out, err := b.execute(func() (any, error) {
		weights, history, err := b.store.Load(ctx)
		return snapshotPair{weights: weights, history: history}, err
	})
	if err != nil {
		return nil, nil, err
	}
	pair := out.(snapshotPair)
	return pair.weights, pair.history, nil
}

// Save writes the snapshot through the breaker.
func (b *Breaker) Save(ctx context.Context, weights model.WeightVector, history []model.HistoryEntry) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.store.Save(ctx, weights, history)
	})
	return err
}

// PutToken stores a token record through the breaker.
func (b *Breaker) PutToken(ctx context.Context, rec TokenRecord) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.store.PutToken(ctx, rec)
	})
	return err
}

// GetToken reads a token record through the breaker.
func (b *Breaker) GetToken(ctx context.Context, id string) (TokenRecord, error) {
	out, err := b.execute(func() (any, error) {
		return b.store.GetToken(ctx, id)
	})
	if err != nil {
		return TokenRecord{}, err
	}
	return out.(TokenRecord), nil
}

// ListTokens reads all token records through the breaker.
func (b *Breaker) ListTokens(ctx context.Context) ([]TokenRecord, error) {
	out, err := b.execute(func() (any, error) {
		return b.store.ListTokens(ctx)
	})
	if err != nil {
		return nil, err
	}
	recs, _ := out.([]TokenRecord)
	return recs, nil
}

// DeleteToken removes a token record through the breaker.
func (b *Breaker) DeleteToken(ctx context.Context, id string) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.store.DeleteToken(ctx, id)
	})
	return err
}
