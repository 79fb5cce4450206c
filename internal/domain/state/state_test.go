package state

import (
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/use-overseer/Orquesta/internal/domain/model"
)

func TestSnapshotAndReplace(t *testing.T) {
	Convey("Given a fresh state", t, func() {
		s := New()

		Convey("When nothing has been installed", func() {
			weights, history, feedback := s.Snapshot()

			Convey("Then the snapshot is empty", func() {
				So(weights, ShouldBeEmpty)
				So(history, ShouldBeEmpty)
				So(feedback, ShouldEqual, 0)
			})
		})

		Convey("When a loaded state is installed", func() {
			s.Replace(model.WeightVector{"role:lector": 0.4}, []model.HistoryEntry{
				{ID: "a", Outcome: model.OutcomeAccepted},
				{ID: "b", Outcome: model.OutcomePending},
				{ID: "c", Outcome: model.OutcomeRejected},
			})

			Convey("Then snapshots expose it with the terminal count", func() {
				weights, history, feedback := s.Snapshot()
				So(weights.Get("role:lector"), ShouldEqual, 0.4)
				So(history, ShouldHaveLength, 3)
				So(feedback, ShouldEqual, 2)
			})
		})
	})
}

func TestSeedWeights(t *testing.T) {
	Convey("Given seed weights", t, func() {
		seed := model.WeightVector{model.FeatureRotation: 1.0}
		s := New(WithSeedWeights(seed))

		Convey("When the caller mutates its seed map afterwards", func() {
			seed[model.FeatureRotation] = -9

			Convey("Then the state keeps its own copy", func() {
				weights, _, _ := s.Snapshot()
				So(weights.Get(model.FeatureRotation), ShouldEqual, 1.0)
			})
		})
	})
}

func TestAppendPending(t *testing.T) {
	Convey("Given a state with feedback on record", t, func() {
		s := New()
		s.Replace(model.WeightVector{}, []model.HistoryEntry{{ID: "a", Outcome: model.OutcomeAccepted}})

		Convey("When pending assignment entries are appended", func() {
			s.AppendPending(
				model.HistoryEntry{ID: "b", Outcome: model.OutcomePending},
				model.HistoryEntry{ID: "c", Outcome: model.OutcomePending},
			)

			Convey("Then history grows but the feedback count does not", func() {
				_, history, feedback := s.Snapshot()
				So(history, ShouldHaveLength, 3)
				So(feedback, ShouldEqual, 1)
			})
		})
	})
}

func TestCommitAndUndo(t *testing.T) {
	Convey("Given a state with prior weights", t, func() {
		s := New(WithSeedWeights(model.WeightVector{"role:lector": 0.1}))

		Convey("When an update is committed", func() {
			undo := s.Commit(model.WeightVector{"role:lector": 0.2}, []model.HistoryEntry{
				{ID: "f1", Outcome: model.OutcomeAccepted},
			})

			Convey("Then the new weights and entries are visible", func() {
				weights, history, feedback := s.Snapshot()
				So(weights.Get("role:lector"), ShouldEqual, 0.2)
				So(history, ShouldHaveLength, 1)
				So(feedback, ShouldEqual, 1)
			})

			Convey("And undo restores the previous weights and removes the entries", func() {
				undo()

				weights, history, feedback := s.Snapshot()
				So(weights.Get("role:lector"), ShouldEqual, 0.1)
				So(history, ShouldBeEmpty)
				So(feedback, ShouldEqual, 0)
			})

			Convey("And undo keeps pending entries appended after the commit", func() {
				s.AppendPending(model.HistoryEntry{ID: "p1", Outcome: model.OutcomePending})
				undo()

				_, history, _ := s.Snapshot()
				So(history, ShouldHaveLength, 1)
				So(history[0].ID, ShouldEqual, "p1")
			})
		})
	})
}

func TestRecent(t *testing.T) {
	Convey("Given a history of five entries", t, func() {
		s := New()
		s.Replace(model.WeightVector{}, []model.HistoryEntry{
			{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"},
		})

		Convey("When the last three are requested", func() {
			got := s.Recent(3)

			Convey("Then the tail is returned oldest first", func() {
				So(got, ShouldHaveLength, 3)
				So(got[0].ID, ShouldEqual, "3")
				So(got[2].ID, ShouldEqual, "5")
			})
		})

		Convey("When the limit exceeds the log", func() {
			So(s.Recent(50), ShouldHaveLength, 5)
		})

		Convey("When the limit is not positive", func() {
			So(s.Recent(0), ShouldHaveLength, 5)
		})
	})
}

func TestExportIsDetached(t *testing.T) {
	Convey("Given an exported copy", t, func() {
		s := New(WithSeedWeights(model.WeightVector{"role:lector": 0.3}))
		s.AppendPending(model.HistoryEntry{ID: "a"})

		weights, history := s.Export()

		Convey("When the copy is mutated", func() {
			weights["role:lector"] = -1
			history[0].ID = "mangled"

			Convey("Then the state is unaffected", func() {
				liveWeights, liveHistory, _ := s.Snapshot()
				So(liveWeights.Get("role:lector"), ShouldEqual, 0.3)
				So(liveHistory[0].ID, ShouldEqual, "a")
			})
		})
	})
}

func TestConcurrentReaders(t *testing.T) {
	Convey("Given committers and readers running together", t, func() {
		s := New()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func(worker int) {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					undo := s.Commit(model.WeightVector{"role:lector": float64(j)}, []model.HistoryEntry{
						{ID: fmt.Sprintf("w%d-%d", worker, j), Outcome: model.OutcomeAccepted},
					})
					if j%2 == 0 {
						undo()
					}
				}
			}(i)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					weights, history, feedback := s.Snapshot()
					_ = weights.Get("role:lector")
					_ = len(history)
					_ = feedback
				}
			}()
		}
		wg.Wait()

		Convey("Then the feedback count still matches the log", func() {
			_, history, feedback := s.Snapshot()
			terminal := 0
			for i := range history {
				if history[i].Outcome.Terminal() {
					terminal++
				}
			}
			So(feedback, ShouldEqual, terminal)
		})
	})
}
