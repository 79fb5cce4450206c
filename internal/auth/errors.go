package auth

import "errors"

// Sentinel kinds for authentication errors.
var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrUnknownToken    = errors.New("unknown token")
	ErrTokenInactive   = errors.New("token not active")
	ErrTokenExpired    = errors.New("token expired")
	ErrRequestPending  = errors.New("a pending request already exists for this email")
	ErrUnknownRequest  = errors.New("unknown token request")
	ErrAlreadyReviewed = errors.New("request already reviewed")
	ErrNotAdmin        = errors.New("admin privileges required")
)
