package learning

import (
	"errors"
)

// Sentinel kinds for feedback errors.
var (
	// ErrInvalidOutcome marks feedback whose outcome is not a terminal verdict.
	ErrInvalidOutcome = errors.New("invalid feedback outcome")
	// ErrMissingAlternative marks a correction without a replacement candidate.
	ErrMissingAlternative = errors.New("correction requires an alternative candidate")
	// ErrUnknownReference marks feedback for a week/role/candidate never assigned.
	ErrUnknownReference = errors.New("no assignment matches the feedback reference")
)
