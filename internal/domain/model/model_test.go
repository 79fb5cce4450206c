package model_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
	model "github.com/use-overseer/Orquesta/internal/domain/model"
)

func TestCandidateCapable(t *testing.T) {
	convey.Convey("Given a candidate with a capability set", t, func() {
		c := model.Candidate{
			ID:     7,
			Name:   "Ana",
			Gender: model.GenderFemale,
			Roles:  []string{"lector", "publicador"},
		}

		convey.Convey("When checking a role the candidate holds", func() {
			convey.So(c.Capable("lector"), convey.ShouldBeTrue)
			convey.So(c.Capable("publicador"), convey.ShouldBeTrue)
		})

		convey.Convey("When checking a role the candidate lacks", func() {
			convey.So(c.Capable("presidente"), convey.ShouldBeFalse)
		})

		convey.Convey("When checking the generic role", func() {
			convey.Convey("Then every candidate qualifies", func() {
				convey.So(c.Capable(model.RoleTypeGeneric), convey.ShouldBeTrue)
				convey.So(model.Candidate{}.Capable(model.RoleTypeGeneric), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the candidate has no roles at all", func() {
			empty := model.Candidate{ID: 9, Name: "Luis"}
			convey.So(empty.Capable("lector"), convey.ShouldBeFalse)
		})
	})
}

func TestSlotDerivation(t *testing.T) {
	convey.Convey("Given meeting activities", t, func() {
		convey.Convey("When deriving the primary slot of a plain activity", func() {
			slot := model.PrimarySlot(model.Activity{Type: "lector", Title: "Lectura"})

			convey.Convey("Then the slot matches the activity type with no gender rules", func() {
				convey.So(slot.Role, convey.ShouldEqual, "lector")
				convey.So(slot.Kind, convey.ShouldEqual, model.SlotPrimary)
				convey.So(slot.RequiredGender, convey.ShouldEqual, model.Gender(""))
				convey.So(slot.PreferredGender, convey.ShouldEqual, model.Gender(""))
			})
		})

		convey.Convey("When deriving the primary slot of an SMM activity", func() {
			slot := model.PrimarySlot(model.Activity{Type: model.RoleTypeSMM, Title: "Revisita"})

			convey.Convey("Then it draws from the publicador pool and prefers women", func() {
				convey.So(slot.Role, convey.ShouldEqual, model.RolePublicador)
				convey.So(slot.PreferredGender, convey.ShouldEqual, model.GenderFemale)
				convey.So(slot.RequiredGender, convey.ShouldEqual, model.Gender(""))
			})
		})

		convey.Convey("When deriving an assistant slot", func() {
			slot := model.AssistantSlot(model.GenderMale)

			convey.Convey("Then it draws from the publicador pool with the primary's gender", func() {
				convey.So(slot.Role, convey.ShouldEqual, model.RolePublicador)
				convey.So(slot.Kind, convey.ShouldEqual, model.SlotAssistant)
				convey.So(slot.RequiredGender, convey.ShouldEqual, model.GenderMale)
			})
		})

		convey.Convey("When deriving an assistant slot with unknown primary gender", func() {
			slot := model.AssistantSlot("")

			convey.Convey("Then no gender is required", func() {
				convey.So(slot.RequiredGender, convey.ShouldEqual, model.Gender(""))
			})
		})
	})
}

func TestOutcome(t *testing.T) {
	convey.Convey("Given outcome values", t, func() {
		convey.Convey("When classifying terminal outcomes", func() {
			convey.So(model.OutcomeAccepted.Terminal(), convey.ShouldBeTrue)
			convey.So(model.OutcomeRejected.Terminal(), convey.ShouldBeTrue)
			convey.So(model.OutcomeCorrected.Terminal(), convey.ShouldBeTrue)
			convey.So(model.OutcomePending.Terminal(), convey.ShouldBeFalse)
		})

		convey.Convey("When validating outcome values", func() {
			convey.So(model.OutcomePending.Valid(), convey.ShouldBeTrue)
			convey.So(model.Outcome("maybe").Valid(), convey.ShouldBeFalse)
		})

		convey.Convey("When computing learning signals", func() {
			convey.Convey("Then acceptance reinforces with +1", func() {
				convey.So(model.OutcomeAccepted.Signal(2.0), convey.ShouldEqual, 1.0)
			})

			convey.Convey("Then rejection and correction push back harder", func() {
				convey.So(model.OutcomeRejected.Signal(2.0), convey.ShouldEqual, -2.0)
				convey.So(model.OutcomeCorrected.Signal(2.0), convey.ShouldEqual, -2.0)
			})

			convey.Convey("Then pending carries no signal", func() {
				convey.So(model.OutcomePending.Signal(2.0), convey.ShouldEqual, 0.0)
			})
		})
	})
}

func TestWeightVector(t *testing.T) {
	convey.Convey("Given a weight vector", t, func() {
		w := model.WeightVector{
			model.FeatureRotation:              1.0,
			model.RoleFeature("lector"):        0.4,
			model.AffinityFeature(3, "lector"): -0.8,
		}

		convey.Convey("When reading a missing key", func() {
			convey.Convey("Then it defaults to zero instead of failing", func() {
				convey.So(w.Get("never-written"), convey.ShouldEqual, 0.0)
			})
		})

		convey.Convey("When computing a dot product", func() {
			f := model.FeatureVector{
				model.FeatureRotation:              0.5,
				model.RoleFeature("lector"):        1.0,
				model.AffinityFeature(3, "lector"): 1.0,
				"unknown":                          1.0,
			}

			convey.Convey("Then missing weights contribute nothing", func() {
				convey.So(w.Dot(f), convey.ShouldAlmostEqual, 0.5*1.0+0.4-0.8, 1e-9)
			})
		})

		convey.Convey("When cloning", func() {
			clone := w.Clone()
			clone[model.FeatureRotation] = 99

			convey.Convey("Then the original is untouched", func() {
				convey.So(w.Get(model.FeatureRotation), convey.ShouldEqual, 1.0)
			})
		})

		convey.Convey("When cloning a nil vector", func() {
			var nilW model.WeightVector
			clone := nilW.Clone()

			convey.Convey("Then the clone is usable", func() {
				clone["x"] = 1
				convey.So(clone.Get("x"), convey.ShouldEqual, 1.0)
			})
		})
	})
}

func TestFeatureKeys(t *testing.T) {
	convey.Convey("Given the feature key constructors", t, func() {
		convey.Convey("When building role and affinity keys", func() {
			convey.So(model.RoleFeature("oracion"), convey.ShouldEqual, "role:oracion")
			convey.So(model.AffinityFeature(42, "oracion"), convey.ShouldEqual, "affinity:42:oracion")
		})

		convey.Convey("When cloning a feature vector", func() {
			f := model.FeatureVector{"a": 1}
			clone := f.Clone()
			clone["a"] = 2

			convey.So(f["a"], convey.ShouldEqual, 1.0)
		})

		convey.Convey("When cloning a nil feature vector", func() {
			var f model.FeatureVector
			convey.So(f.Clone(), convey.ShouldBeNil)
		})
	})
}
