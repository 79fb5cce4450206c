// Package config defines service configuration and loading.
//
// Conventions:
// - Flat koanf keys; every field is settable from file and environment.
// - New returns the defaults; Load layers file and env on top.
// - External errors are wrapped with this package's sentinels.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ReadTimeout and WriteTimeout bound request handling.
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown, final flush included.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed origins for browser clients.
	CORSOrigins []string `koanf:"cors_origins"`

	// AdminToken guards the token-review endpoints. Empty disables them.
	AdminToken string `koanf:"admin_token"`

	// TokenExpiryDays is the lifetime of minted API tokens.
	TokenExpiryDays int `koanf:"token_expiry_days"`

	// StoreBackend selects persistence: memory or badger.
	StoreBackend string `koanf:"store_backend"`

	// StoreDir is the badger data directory.
	StoreDir string `koanf:"store_dir"`

	// StoreSync forces synchronous badger writes.
	StoreSync bool `koanf:"store_sync"`

	// PersistAttempts and PersistBackoff shape the feedback save retry
	// loop; the backoff doubles per attempt.
	PersistAttempts int           `koanf:"persist_attempts"`
	PersistBackoff  time.Duration `koanf:"persist_backoff"`

	// FlushCapacity, FlushDebounce and FlushSaveTimeout tune the
	// background snapshot flusher.
	FlushCapacity    int           `koanf:"flush_capacity"`
	FlushDebounce    time.Duration `koanf:"flush_debounce"`
	FlushSaveTimeout time.Duration `koanf:"flush_save_timeout"`

	// SeedWeights initializes the model on first boot.
	SeedWeights map[string]float64 `koanf:"seed_weights"`

	// EpsilonMin and EpsilonMax bound the exploration schedule.
	EpsilonMin float64 `koanf:"epsilon_min"`
	EpsilonMax float64 `koanf:"epsilon_max"`

	// Exploration toggles epsilon-greedy noise entirely.
	Exploration bool `koanf:"exploration"`

	// LearningRate scales feedback weight updates; NegativeFactor
	// amplifies negative outcomes; WeightCap clamps weight magnitude.
	LearningRate   float64 `koanf:"learning_rate"`
	NegativeFactor float64 `koanf:"negative_factor"`
	WeightCap      float64 `koanf:"weight_cap"`

	// SaturationWeeks is the recency horizon after which rotation
	// pressure stops growing.
	SaturationWeeks int `koanf:"saturation_weeks"`

	// TieBreak resolves exact score ties: lowest_id or name.
	TieBreak string `koanf:"tie_break"`

	// HistoryLimit is the default page size for feedback history reads.
	HistoryLimit int `koanf:"history_limit"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":8080",
		ReadTimeout:      10 * time.Second,
		WriteTimeout:     30 * time.Second,
		ShutdownTimeout:  15 * time.Second,
		CORSOrigins:      []string{"*"},
		TokenExpiryDays:  365,
		StoreBackend:     "memory",
		StoreDir:         "./data",
		StoreSync:        true,
		PersistAttempts:  3,
		PersistBackoff:   50 * time.Millisecond,
		FlushCapacity:    64,
		FlushDebounce:    250 * time.Millisecond,
		FlushSaveTimeout: 5 * time.Second,
		SeedWeights: map[string]float64{
			"rotation":     1.0,
			"gender_match": 0.5,
		},
		EpsilonMin:      0.01,
		EpsilonMax:      0.5,
		Exploration:     true,
		LearningRate:    0.05,
		NegativeFactor:  2.0,
		WeightCap:       5.0,
		SaturationWeeks: 20,
		TieBreak:        "lowest_id",
		HistoryLimit:    10,
	}
}
