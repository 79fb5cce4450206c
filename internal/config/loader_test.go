package config_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/use-overseer/Orquesta/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "memory")
				convey.So(cfg.FlushDebounce, convey.ShouldEqual, 250*time.Millisecond)
				convey.So(cfg.HistoryLimit, convey.ShouldEqual, 10)
				convey.So(cfg.Exploration, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ORQUESTA_ADDR", ":9090")
			_ = os.Setenv("ORQUESTA_STORE_BACKEND", "badger")
			_ = os.Setenv("ORQUESTA_STORE_DIR", "/tmp/orquesta")
			_ = os.Setenv("ORQUESTA_PERSIST_ATTEMPTS", "5")
			_ = os.Setenv("ORQUESTA_PERSIST_BACKOFF", "100ms")
			_ = os.Setenv("ORQUESTA_LEARNING_RATE", "0.1")
			_ = os.Setenv("ORQUESTA_EXPLORATION", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "badger")
				convey.So(cfg.StoreDir, convey.ShouldEqual, "/tmp/orquesta")
				convey.So(cfg.PersistAttempts, convey.ShouldEqual, 5)
				convey.So(cfg.PersistBackoff, convey.ShouldEqual, 100*time.Millisecond)
				convey.So(cfg.LearningRate, convey.ShouldEqual, 0.1)
				convey.So(cfg.Exploration, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":7070"
store_backend: badger
store_dir: /var/lib/orquesta
epsilon_min: 0.02
epsilon_max: 0.4
tie_break: name
seed_weights:
  rotation: 2.0
  "role:presidente": 0.3
cors_origins:
  - https://planner.example.org
  - https://admin.example.org
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ORQUESTA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "badger")
				convey.So(cfg.StoreDir, convey.ShouldEqual, "/var/lib/orquesta")
				convey.So(cfg.EpsilonMin, convey.ShouldEqual, 0.02)
				convey.So(cfg.EpsilonMax, convey.ShouldEqual, 0.4)
				convey.So(cfg.TieBreak, convey.ShouldEqual, "name")
				convey.So(cfg.SeedWeights["rotation"], convey.ShouldEqual, 2.0)
				convey.So(cfg.SeedWeights["role:presidente"], convey.ShouldEqual, 0.3)
				convey.So(cfg.SeedWeights["gender_match"], convey.ShouldEqual, 0.5)
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{
					"https://planner.example.org",
					"https://admin.example.org",
				})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":7070"
history_limit: 25
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ORQUESTA_CONFIG", tmpFile)
			_ = os.Setenv("ORQUESTA_ADDR", ":9090") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")    // Overridden by env
				convey.So(cfg.HistoryLimit, convey.ShouldEqual, 25) // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ORQUESTA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ORQUESTA_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given invalid configuration values", t, func() {
		cases := map[string]map[string]string{
			"empty addr":            {"ORQUESTA_ADDR": ""},
			"unknown backend":       {"ORQUESTA_STORE_BACKEND": "papyrus"},
			"badger without dir":    {"ORQUESTA_STORE_BACKEND": "badger", "ORQUESTA_STORE_DIR": ""},
			"inverted epsilon":      {"ORQUESTA_EPSILON_MIN": "0.6", "ORQUESTA_EPSILON_MAX": "0.2"},
			"negative epsilon":      {"ORQUESTA_EPSILON_MIN": "-0.1"},
			"zero persist attempts": {"ORQUESTA_PERSIST_ATTEMPTS": "0"},
			"unknown tie break":     {"ORQUESTA_TIE_BREAK": "coin_flip"},
			"zero history limit":    {"ORQUESTA_HISTORY_LIMIT": "0"},
		}

		for name, vars := range cases {
			convey.Convey("When loading with "+name, func() {
				for k, v := range vars {
					_ = os.Setenv(k, v)
				}
				defer clearConfigEnvVars()

				cfg, err := config.Load()

				convey.Convey("Then it should return a validation error", func() {
					convey.So(err, convey.ShouldNotBeNil)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
					convey.So(cfg, convey.ShouldBeNil)
				})
			})
		}
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"ORQUESTA_CONFIG",
		"ORQUESTA_ADDR",
		"ORQUESTA_STORE_BACKEND",
		"ORQUESTA_STORE_DIR",
		"ORQUESTA_PERSIST_ATTEMPTS",
		"ORQUESTA_PERSIST_BACKOFF",
		"ORQUESTA_LEARNING_RATE",
		"ORQUESTA_EXPLORATION",
		"ORQUESTA_EPSILON_MIN",
		"ORQUESTA_EPSILON_MAX",
		"ORQUESTA_TIE_BREAK",
		"ORQUESTA_HISTORY_LIMIT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "orquesta-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
