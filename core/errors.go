package core

import (
	"errors"
)

// ErrNotFound is a sentinel error for "not found" cases
var ErrNotFound = errors.New("not found")

// IsNotFoundError checks if an error wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, ErrNotFound)
}
