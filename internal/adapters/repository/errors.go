package repository

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrNotFound       = errors.New("record not found")
	ErrUnavailable    = errors.New("store unavailable")
	ErrCorrupt        = errors.New("corrupt snapshot")
	ErrUnknownBackend = errors.New("unknown store backend")
)
