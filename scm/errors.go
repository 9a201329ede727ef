package scm

import (
	"errors"
)

var (
	// ErrNotFound is returned when the requested entity does not exist (or no longer exists).
	ErrNotFound = errors.New("not found")

	// ErrTransient is returned for failures that may succeed later: network errors,
	// rate limiting and server-side errors.
	ErrTransient = errors.New("transient provider failure")
)

// IsNotFound reports whether err (or any error it wraps) is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransient reports whether err (or any error it wraps) is ErrTransient.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
