package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("missing or malformed credentials")
	ErrForbidden    = errors.New("credentials rejected")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("temporarily unavailable")
)

// Wrap annotates err with the operation that produced it.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// WrapKind ties err to a sentinel kind under the operation tag, keeping the
// kind matchable with errors.Is while preserving the cause message.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return fmt.Errorf("%s: %w: %v", op, kind, err)
}

// NewKind creates a bare kind-tagged error for the operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}
