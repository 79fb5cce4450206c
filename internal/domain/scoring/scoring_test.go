package scoring_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/use-overseer/Orquesta/internal/domain/model"
	scoring "github.com/use-overseer/Orquesta/internal/domain/scoring"
)

func TestModelScore(t *testing.T) {
	Convey("Given a scoring model without exploration", t, func() {
		m := scoring.New(scoring.WithExploration(false))
		weights := model.WeightVector{
			model.FeatureRotation:              1.0,
			model.RoleFeature("lector"):        0.5,
			model.AffinityFeature(1, "lector"): 0.25,
		}

		Convey("When scoring a full feature vector", func() {
			features := model.FeatureVector{
				model.FeatureRotation:              0.8,
				model.RoleFeature("lector"):        1,
				model.AffinityFeature(1, "lector"): 1,
			}

			Convey("Then it should return the exact weighted sum", func() {
				got := m.Score(weights, features, 0.5)
				So(got, ShouldAlmostEqual, 0.8*1.0+0.5+0.25, 1e-9)
			})

			Convey("And repeated calls should be deterministic", func() {
				first := m.Score(weights, features, 0.5)
				second := m.Score(weights, features, 0.5)
				So(second, ShouldEqual, first)
			})
		})

		Convey("When scoring features with unknown weight keys", func() {
			features := model.FeatureVector{
				model.RoleFeature("oracion"):         1,
				model.AffinityFeature(99, "oracion"): 1,
			}

			Convey("Then missing keys read as zero instead of failing", func() {
				So(m.Score(weights, features, 0), ShouldEqual, 0.0)
			})
		})
	})

	Convey("Given a scoring model with exploration", t, func() {
		m := scoring.New(scoring.WithSeed(7))
		weights := model.WeightVector{model.FeatureRotation: 1.0}
		features := model.FeatureVector{model.FeatureRotation: 0.5}

		Convey("When scoring with a positive epsilon", func() {
			base := 0.5
			got := m.Score(weights, features, 0.2)

			Convey("Then noise is bounded by epsilon", func() {
				So(got, ShouldBeGreaterThanOrEqualTo, base)
				So(got, ShouldBeLessThan, base+0.2)
			})
		})

		Convey("When epsilon is zero", func() {
			Convey("Then no noise is added", func() {
				So(m.Score(weights, features, 0), ShouldEqual, 0.5)
			})
		})
	})
}

func TestModelEpsilon(t *testing.T) {
	Convey("Given the default epsilon schedule", t, func() {
		m := scoring.New()

		Convey("When no feedback has been recorded", func() {
			Convey("Then exploration starts at the maximum", func() {
				So(m.Epsilon(0), ShouldAlmostEqual, 0.5, 1e-9)
			})
		})

		Convey("When feedback accumulates", func() {
			Convey("Then epsilon decays monotonically", func() {
				prev := m.Epsilon(0)
				for _, n := range []int{1, 2, 5, 10, 50, 200} {
					cur := m.Epsilon(n)
					So(cur, ShouldBeLessThanOrEqualTo, prev)
					prev = cur
				}
			})

			Convey("And it never drops below the floor", func() {
				So(m.Epsilon(1_000_000), ShouldEqual, 0.01)
			})
		})

		Convey("When the count is negative", func() {
			Convey("Then it is treated as zero", func() {
				So(m.Epsilon(-5), ShouldEqual, m.Epsilon(0))
			})
		})
	})

	Convey("Given a custom epsilon range", t, func() {
		m := scoring.New(scoring.WithEpsilonRange(0.05, 1.0))

		Convey("When evaluating the schedule", func() {
			So(m.Epsilon(0), ShouldAlmostEqual, 1.0, 1e-9)
			So(m.Epsilon(3), ShouldAlmostEqual, 0.25, 1e-9)
			So(m.Epsilon(10_000), ShouldEqual, 0.05)
		})
	})
}

func TestFeatures(t *testing.T) {
	Convey("Given feature extraction", t, func() {
		ana := model.Candidate{ID: 3, Name: "Ana", Gender: model.GenderFemale}

		Convey("When the slot has no gender rules", func() {
			slot := model.RoleSlot{Role: "lector", Kind: model.SlotPrimary}
			f := scoring.Features(ana, slot, 0.75)

			Convey("Then role, affinity and rotation features are present", func() {
				So(f[model.RoleFeature("lector")], ShouldEqual, 1.0)
				So(f[model.AffinityFeature(3, "lector")], ShouldEqual, 1.0)
				So(f[model.FeatureRotation], ShouldEqual, 0.75)
			})

			Convey("And no gender indicator is emitted", func() {
				_, ok := f[model.FeatureGenderMatch]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the slot prefers a gender", func() {
			slot := model.RoleSlot{Role: model.RolePublicador, Kind: model.SlotPrimary, PreferredGender: model.GenderFemale}

			Convey("Then a matching candidate gets indicator 1", func() {
				f := scoring.Features(ana, slot, 0)
				So(f[model.FeatureGenderMatch], ShouldEqual, 1.0)
			})

			Convey("And a non-matching candidate gets indicator 0", func() {
				luis := model.Candidate{ID: 4, Name: "Luis", Gender: model.GenderMale}
				f := scoring.Features(luis, slot, 0)
				So(f[model.FeatureGenderMatch], ShouldEqual, 0.0)
			})
		})

		Convey("When the slot mandates a gender", func() {
			slot := model.AssistantSlot(model.GenderFemale)
			f := scoring.Features(ana, slot, 0)

			Convey("Then the indicator reflects the mandate", func() {
				So(f[model.FeatureGenderMatch], ShouldEqual, 1.0)
			})
		})
	})
}
