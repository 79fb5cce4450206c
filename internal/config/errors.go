package config

import (
	"errors"
)

// Sentinel errors for this package, matchable with errors.Is from callers.
var (
	// ErrInvalidConfig marks a configuration that parsed but fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrLoadConfig marks a failure to read or parse configuration sources.
	ErrLoadConfig = errors.New("configuration load failed")
)
