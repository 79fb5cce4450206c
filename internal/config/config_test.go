package config_test

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/use-overseer/Orquesta/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.StoreBackend, convey.ShouldEqual, "memory")
			convey.So(cfg.PersistAttempts, convey.ShouldEqual, 3)
			convey.So(cfg.PersistBackoff, convey.ShouldEqual, 50*time.Millisecond)
			convey.So(cfg.EpsilonMin, convey.ShouldEqual, 0.01)
			convey.So(cfg.EpsilonMax, convey.ShouldEqual, 0.5)
			convey.So(cfg.LearningRate, convey.ShouldEqual, 0.05)
			convey.So(cfg.NegativeFactor, convey.ShouldEqual, 2.0)
			convey.So(cfg.WeightCap, convey.ShouldEqual, 5.0)
			convey.So(cfg.SaturationWeeks, convey.ShouldEqual, 20)
			convey.So(cfg.TieBreak, convey.ShouldEqual, "lowest_id")
			convey.So(cfg.TokenExpiryDays, convey.ShouldEqual, 365)
			convey.So(cfg.SeedWeights["rotation"], convey.ShouldEqual, 1.0)
			convey.So(cfg.SeedWeights["gender_match"], convey.ShouldEqual, 0.5)
		})
	})
}
