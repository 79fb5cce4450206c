// Package flush drains state snapshots to the durable store from a single
// background goroutine, so request handlers never wait on persistence.
//
// Triggers are coalesced: a burst of assignments close together produces
// one save of the freshest state, not one save per request.
package flush

import (
	"context"
	"sync"
	"time"

	"github.com/use-overseer/Orquesta/internal/domain/model"
	"github.com/use-overseer/Orquesta/pkg/logger"
	"github.com/use-overseer/Orquesta/pkg/metrics"
)

// Default flusher configuration constants.
const (
	defaultQueueCapacity = 64
	defaultDebounce      = 250 * time.Millisecond
	defaultSaveTimeout   = 5 * time.Second
)

// Exporter produces a detached copy of the current state worth persisting.
type Exporter interface {
	Export() (model.WeightVector, []model.HistoryEntry)
}

// Saver absorbs snapshots. The repository Store satisfies it.
type Saver interface {
	Save(ctx context.Context, weights model.WeightVector, history []model.HistoryEntry) error
}

// Flusher owns the background persistence loop.
type Flusher struct {
	saver       Saver
	source      Exporter
	triggers    chan struct{}
	capacity    int
	debounce    time.Duration
	saveTimeout time.Duration
	name        string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}
	mu       sync.RWMutex
	closed   bool

	// Logging
	logger logger.Logger
}

// New creates a flusher reading state from source and writing it to saver.
func New(source Exporter, saver Saver, opts ...Option) *Flusher {
	f := &Flusher{
		saver:       saver,
		source:      source,
		capacity:    defaultQueueCapacity,
		debounce:    defaultDebounce,
		saveTimeout: defaultSaveTimeout,
		name:        "flusher",
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(f)
	}

	f.triggers = make(chan struct{}, f.capacity)
	f.logger = logger.Get().Named(f.name)

	metrics.UpdateFlushQueueSize(0)

	return f
}

// Trigger requests a background save of the current state.
// Returns false if the flusher is closed or its queue is full; pending
// triggers already cover the caller's change in that case.
func (f *Flusher) Trigger() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return false
	}

	select {
	case f.triggers <- struct{}{}:
		metrics.UpdateFlushQueueSize(len(f.triggers))
		return true
	default:
		return false
	}
}

// Run starts the flush loop until ctx is canceled or Shutdown is called.
func (f *Flusher) Run(ctx context.Context) {
	defer close(f.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.shutdown:
			// Final drain so the last accepted triggers still land.
			select {
			case <-f.triggers:
				f.save()
			default:
			}
			return
		case <-f.triggers:
			f.coalesce(ctx)
			f.save()
		}
	}
}

// coalesce waits out the debounce window, absorbing further triggers.
func (f *Flusher) coalesce(ctx context.Context) {
	timer := time.NewTimer(f.debounce)
	defer timer.Stop()

	for {
		select {
		case <-f.triggers:
		case <-timer.C:
			return
		case <-ctx.Done():
			return
		case <-f.shutdown:
			return
		}
	}
}

// save exports the freshest state and writes it through the saver.
func (f *Flusher) save() {
	// Detached context: the final flush runs while the run context is
	// already collapsing.
	ctx, cancel := context.WithTimeout(context.Background(), f.saveTimeout)
	defer cancel()

	weights, history := f.source.Export()

	start := time.Now()
	err := f.saver.Save(ctx, weights, history)
	metrics.RecordPersistDuration(float64(time.Since(start).Milliseconds()))
	metrics.UpdateFlushQueueSize(len(f.triggers))

	if err != nil {
		// The next trigger retries with fresher state.
		f.logger.Warn(ctx, "background flush failed", logger.Error(err))
		return
	}

	f.logger.Debug(ctx, "state flushed",
		logger.Int("weight_keys", len(weights)),
		logger.Int("history_entries", len(history)),
	)
}

// Shutdown stops accepting triggers, drains the loop and waits for it.
func (f *Flusher) Shutdown(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	close(f.shutdown)

	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		f.logger.Warn(ctx, "flusher shutdown timed out")
		return ctx.Err()
	}
}
