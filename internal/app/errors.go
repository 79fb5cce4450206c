package service

import (
	"errors"
)

// Sentinel kinds for service errors.
var (
	// ErrNotStarted marks calls against a service that is not running.
	ErrNotStarted = errors.New("service not started")
	// ErrNoStore marks a service started without a repository store.
	ErrNoStore = errors.New("no store configured")
	// ErrNotPersisted marks feedback rolled back because no save attempt
	// succeeded.
	ErrNotPersisted = errors.New("feedback not persisted")
)
