package cli

import (
	"errors"
	"fmt"
)

// UsageError signals that usage information should be shown along with the error.
// A [Command] that returns one prints its usage before passing the error back.
type UsageError struct {
	wrapped error
}

func (e *UsageError) Error() string {
	if e.wrapped == nil {
		return "usage error"
	}
	return "usage error: " + e.wrapped.Error()
}

// Is matches any *UsageError, so errors.Is(err, &UsageError{}) works as a type check.
func (e *UsageError) Is(err error) bool {
	_, ok := err.(*UsageError)
	return ok
}

func (e *UsageError) Unwrap() error {
	return e.wrapped
}

// NewUsageError creates a [UsageError] wrapping fmt.Errorf(format, args...).
func NewUsageError(format string, args ...any) error {
	return &UsageError{wrapped: fmt.Errorf(format, args...)}
}

// IsUsageError reports whether err is or wraps a [UsageError].
func IsUsageError(err error) bool {
	var uerr *UsageError
	return errors.As(err, &uerr)
}
