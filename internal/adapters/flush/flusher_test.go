package flush_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/use-overseer/Orquesta/internal/adapters/flush"
	"github.com/use-overseer/Orquesta/internal/domain/model"
	"github.com/use-overseer/Orquesta/internal/domain/state"
	logging "github.com/use-overseer/Orquesta/pkg/logger"
)

// mockSaver records snapshots and can be told to fail.
type mockSaver struct {
	mu      sync.Mutex
	saves   int
	weights model.WeightVector
	history []model.HistoryEntry
	err     error
}

func (s *mockSaver) Save(_ context.Context, weights model.WeightVector, history []model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saves++
	s.weights = weights
	s.history = history
	return nil
}

func (s *mockSaver) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *mockSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *mockSaver) last() (model.WeightVector, []model.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weights, s.history
}

func TestFlusher(t *testing.T) {
	convey.Convey("Given a flusher over live state", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		source := state.New(state.WithSeedWeights(model.WeightVector{"role:lector": 0.2}))
		saver := &mockSaver{}

		convey.Convey("When created with options", func() {
			flusher := flush.New(source, saver,
				flush.WithCapacity(4),
				flush.WithDebounce(5*time.Millisecond),
				flush.WithName("test-flusher"),
			)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(flusher, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running and triggered", func() {
			flusher := flush.New(source, saver, flush.WithDebounce(5*time.Millisecond))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go flusher.Run(ctx)

			convey.So(flusher.Trigger(), convey.ShouldBeTrue)

			// Give the loop time to debounce and save
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then the current state lands in the saver", func() {
				convey.So(saver.count(), convey.ShouldEqual, 1)
				weights, _ := saver.last()
				convey.So(weights.Get("role:lector"), convey.ShouldEqual, 0.2)
			})

			convey.Convey("And a burst of triggers coalesces into one fresh save", func() {
				source.AppendPending(model.HistoryEntry{ID: "p1", Outcome: model.OutcomePending})
				for i := 0; i < 5; i++ {
					flusher.Trigger()
				}
				time.Sleep(50 * time.Millisecond)

				convey.So(saver.count(), convey.ShouldBeLessThanOrEqualTo, 3)
				_, history := saver.last()
				convey.So(history, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When the saver fails and recovers", func() {
			flusher := flush.New(source, saver, flush.WithDebounce(5*time.Millisecond))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go flusher.Run(ctx)

			saver.setError(errors.New("disk on fire"))
			flusher.Trigger()
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then nothing is recorded while broken", func() {
				convey.So(saver.count(), convey.ShouldEqual, 0)
			})

			convey.Convey("And the next trigger lands once healed", func() {
				saver.setError(nil)
				flusher.Trigger()
				time.Sleep(50 * time.Millisecond)

				convey.So(saver.count(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When shutting down", func() {
			flusher := flush.New(source, saver, flush.WithDebounce(5*time.Millisecond))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go flusher.Run(ctx)
			time.Sleep(10 * time.Millisecond)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.Convey("Then shutdown completes and further triggers are refused", func() {
				convey.So(flusher.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(flusher.Trigger(), convey.ShouldBeFalse)
			})

			convey.Convey("And shutting down twice is a no-op", func() {
				convey.So(flusher.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(flusher.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}
