package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if ORQUESTA_CONFIG is set
//  3. env (prefix ORQUESTA_)
func Load() (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ORQUESTA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: ORQUESTA_ADDR, ORQUESTA_STORE_BACKEND, ...
	// Map env keys like ORQUESTA_STORE_BACKEND -> store_backend (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("ORQUESTA_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "orquesta_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StoreBackend {
	case "memory", "badger":
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	if c.StoreBackend == "badger" && c.StoreDir == "" {
		return fmt.Errorf("%w: store_dir is required for the badger backend", ErrInvalidConfig)
	}
	if c.EpsilonMin < 0 || c.EpsilonMax < c.EpsilonMin {
		return fmt.Errorf("%w: epsilon bounds must satisfy 0 <= epsilon_min <= epsilon_max", ErrInvalidConfig)
	}
	if c.PersistAttempts < 1 {
		return fmt.Errorf("%w: persist_attempts must be at least 1", ErrInvalidConfig)
	}
	if c.TieBreak != "lowest_id" && c.TieBreak != "name" {
		return fmt.Errorf("%w: tie_break must be lowest_id or name", ErrInvalidConfig)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("%w: history_limit must be at least 1", ErrInvalidConfig)
	}
	return nil
}
