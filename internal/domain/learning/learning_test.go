package learning_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	learning "github.com/use-overseer/Orquesta/internal/domain/learning"
	"github.com/use-overseer/Orquesta/internal/domain/model"
)

func weekHistory() []model.HistoryEntry {
	return []model.HistoryEntry{
		{
			ID:            "h1",
			Week:          "2026-07-06",
			Role:          "lector",
			CandidateID:   1,
			CandidateName: "X",
			Outcome:       model.OutcomePending,
			Features: model.FeatureVector{
				model.RoleFeature("lector"):        1,
				model.AffinityFeature(1, "lector"): 1,
				model.FeatureRotation:              0.4,
			},
		},
		{
			ID:            "h2",
			Week:          "2026-07-06",
			Role:          "oracion",
			CandidateID:   2,
			CandidateName: "Y",
			Outcome:       model.OutcomePending,
			Features: model.FeatureVector{
				model.RoleFeature("oracion"):        1,
				model.AffinityFeature(2, "oracion"): 1,
				model.FeatureRotation:               1,
			},
		},
	}
}

func TestApplyLiked(t *testing.T) {
	Convey("Given a pending assignment and a learner", t, func() {
		l := learning.New()
		history := weekHistory()
		weights := model.WeightVector{}

		Convey("When a liked verdict narrows to one role", func() {
			up, err := l.Apply(weights, history, learning.Verdict{
				Week:    "2026-07-06",
				Outcome: model.OutcomeAccepted,
				Role:    "lector",
			})

			Convey("Then every snapshotted feature weight moves up", func() {
				So(err, ShouldBeNil)
				So(up.Matched, ShouldEqual, 1)
				So(weights[model.RoleFeature("lector")], ShouldAlmostEqual, 0.05, 1e-9)
				So(weights[model.AffinityFeature(1, "lector")], ShouldAlmostEqual, 0.05, 1e-9)
				So(weights[model.FeatureRotation], ShouldAlmostEqual, 0.05*0.4, 1e-9)
			})

			Convey("And the other role of the week is untouched", func() {
				So(weights[model.RoleFeature("oracion")], ShouldEqual, 0.0)
			})

			Convey("And one new versioned entry is produced", func() {
				So(up.Entries, ShouldHaveLength, 1)
				So(up.Entries[0].Outcome, ShouldEqual, model.OutcomeAccepted)
				So(up.Entries[0].Role, ShouldEqual, "lector")
				So(up.Entries[0].CandidateID, ShouldEqual, 1)
				So(up.Entries[0].ID, ShouldNotEqual, "h1")
				So(up.Entries[0].Features[model.FeatureRotation], ShouldAlmostEqual, 0.4, 1e-9)
			})

			Convey("And the original entry is never mutated", func() {
				So(history[0].Outcome, ShouldEqual, model.OutcomePending)
			})
		})

		Convey("When the verdict covers the whole week", func() {
			up, err := l.Apply(weights, history, learning.Verdict{
				Week:    "2026-07-06",
				Outcome: model.OutcomeAccepted,
			})

			Convey("Then every assignment of the week is matched", func() {
				So(err, ShouldBeNil)
				So(up.Matched, ShouldEqual, 2)
				So(up.Entries, ShouldHaveLength, 2)
				So(weights[model.RoleFeature("lector")], ShouldAlmostEqual, 0.05, 1e-9)
				So(weights[model.RoleFeature("oracion")], ShouldAlmostEqual, 0.05, 1e-9)
			})
		})
	})
}

func TestApplyAsymmetry(t *testing.T) {
	Convey("Given identical feature snapshots", t, func() {
		l := learning.New()

		likedWeights := model.WeightVector{}
		dislikedWeights := model.WeightVector{}
		history := weekHistory()

		_, err := l.Apply(likedWeights, history, learning.Verdict{
			Week: "2026-07-06", Outcome: model.OutcomeAccepted, Role: "lector",
		})
		So(err, ShouldBeNil)

		_, err = l.Apply(dislikedWeights, history, learning.Verdict{
			Week: "2026-07-06", Outcome: model.OutcomeRejected, Role: "lector",
		})
		So(err, ShouldBeNil)

		Convey("Then the negative step is strictly larger in magnitude", func() {
			likedDelta := likedWeights[model.RoleFeature("lector")]
			dislikedDelta := dislikedWeights[model.RoleFeature("lector")]

			So(likedDelta, ShouldBeGreaterThan, 0)
			So(dislikedDelta, ShouldBeLessThan, 0)
			So(-dislikedDelta, ShouldBeGreaterThan, likedDelta)
			So(-dislikedDelta, ShouldAlmostEqual, 2.0*likedDelta, 1e-9)
		})
	})
}

func TestApplyCorrected(t *testing.T) {
	Convey("Given a correction with a replacement candidate", t, func() {
		l := learning.New()
		history := weekHistory()
		weights := model.WeightVector{}

		up, err := l.Apply(weights, history, learning.Verdict{
			Week:          "2026-07-06",
			Outcome:       model.OutcomeCorrected,
			Role:          "lector",
			CandidateID:   1,
			AlternativeID: 7,
		})

		Convey("Then the chosen candidate's affinity drops", func() {
			So(err, ShouldBeNil)
			So(weights[model.AffinityFeature(1, "lector")], ShouldAlmostEqual, -0.1, 1e-9)
		})

		Convey("And the replacement's affinity gets a positive nudge", func() {
			So(weights[model.AffinityFeature(7, "lector")], ShouldAlmostEqual, 0.05, 1e-9)
		})

		Convey("And the appended entry records the replacement", func() {
			So(up.Entries[0].AlternativeID, ShouldEqual, 7)
			So(up.Entries[0].Outcome, ShouldEqual, model.OutcomeCorrected)
		})
	})

	Convey("Given a correction without a replacement", t, func() {
		l := learning.New()
		weights := model.WeightVector{}

		_, err := l.Apply(weights, weekHistory(), learning.Verdict{
			Week:    "2026-07-06",
			Outcome: model.OutcomeCorrected,
			Role:    "lector",
		})

		Convey("Then it is rejected before any mutation", func() {
			So(err, ShouldWrap, learning.ErrMissingAlternative)
			So(weights, ShouldBeEmpty)
		})
	})
}

func TestApplyErrors(t *testing.T) {
	Convey("Given feedback that references nothing", t, func() {
		l := learning.New()
		weights := model.WeightVector{model.FeatureRotation: 1.0}

		Convey("When the week was never assigned", func() {
			_, err := l.Apply(weights, weekHistory(), learning.Verdict{
				Week: "2030-01-05", Outcome: model.OutcomeAccepted,
			})

			Convey("Then it surfaces as an unknown reference and mutates nothing", func() {
				So(err, ShouldWrap, learning.ErrUnknownReference)
				So(weights[model.FeatureRotation], ShouldEqual, 1.0)
				So(weights, ShouldHaveLength, 1)
			})
		})

		Convey("When the role filter matches nothing", func() {
			_, err := l.Apply(weights, weekHistory(), learning.Verdict{
				Week: "2026-07-06", Outcome: model.OutcomeAccepted, Role: "presidente",
			})

			So(err, ShouldWrap, learning.ErrUnknownReference)
		})

		Convey("When the outcome is not terminal", func() {
			_, err := l.Apply(weights, weekHistory(), learning.Verdict{
				Week: "2026-07-06", Outcome: model.OutcomePending,
			})

			So(err, ShouldWrap, learning.ErrInvalidOutcome)
		})
	})
}

func TestApplyVersioning(t *testing.T) {
	Convey("Given repeated feedback for the same assignment", t, func() {
		l := learning.New()
		weights := model.WeightVector{}
		history := weekHistory()

		first, err := l.Apply(weights, history, learning.Verdict{
			Week: "2026-07-06", Outcome: model.OutcomeAccepted, Role: "lector",
		})
		So(err, ShouldBeNil)
		history = append(history, first.Entries...)

		second, err := l.Apply(weights, history, learning.Verdict{
			Week: "2026-07-06", Outcome: model.OutcomeRejected, Role: "lector",
		})

		Convey("Then the second verdict matches the latest version", func() {
			So(err, ShouldBeNil)
			So(second.Matched, ShouldEqual, 1)
			So(second.Entries, ShouldHaveLength, 1)
		})

		Convey("And both verdicts remain in the audit trail", func() {
			history = append(history, second.Entries...)
			outcomes := []model.Outcome{}
			for _, e := range history {
				if e.Role == "lector" && e.CandidateID == 1 {
					outcomes = append(outcomes, e.Outcome)
				}
			}
			So(outcomes, ShouldResemble, []model.Outcome{
				model.OutcomePending, model.OutcomeAccepted, model.OutcomeRejected,
			})
		})

		Convey("And the weight reflects both steps", func() {
			// +0.05 from liked, -0.10 from disliked
			So(weights[model.RoleFeature("lector")], ShouldAlmostEqual, -0.05, 1e-9)
		})
	})
}

func TestApplyClamping(t *testing.T) {
	Convey("Given a tight weight cap", t, func() {
		l := learning.New(learning.WithWeightCap(0.08), learning.WithLearningRate(0.05))
		weights := model.WeightVector{}
		history := weekHistory()

		Convey("When positive feedback repeats past the cap", func() {
			for range 5 {
				_, err := l.Apply(weights, history, learning.Verdict{
					Week: "2026-07-06", Outcome: model.OutcomeAccepted, Role: "lector",
				})
				So(err, ShouldBeNil)
			}

			Convey("Then the weight saturates at the cap", func() {
				So(weights[model.RoleFeature("lector")], ShouldAlmostEqual, 0.08, 1e-9)
			})
		})

		Convey("When negative feedback repeats past the cap", func() {
			for range 5 {
				_, err := l.Apply(weights, history, learning.Verdict{
					Week: "2026-07-06", Outcome: model.OutcomeRejected, Role: "lector",
				})
				So(err, ShouldBeNil)
			}

			So(weights[model.RoleFeature("lector")], ShouldAlmostEqual, -0.08, 1e-9)
		})
	})
}

func TestApplyCustomRates(t *testing.T) {
	Convey("Given custom learning parameters", t, func() {
		l := learning.New(
			learning.WithLearningRate(0.1),
			learning.WithNegativeFactor(3),
		)
		weights := model.WeightVector{}

		_, err := l.Apply(weights, weekHistory(), learning.Verdict{
			Week: "2026-07-06", Outcome: model.OutcomeRejected, Role: "lector",
		})

		Convey("Then the step uses rate times factor", func() {
			So(err, ShouldBeNil)
			So(weights[model.RoleFeature("lector")], ShouldAlmostEqual, -0.3, 1e-9)
		})
	})
}
