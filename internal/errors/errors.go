package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy for the session and access-control core. None of these are
// fatal: each one degrades to "treat as logged out" or "treat as still locked".
var (
	// Token errors
	ErrDecode  = errors.New("malformed token")
	ErrExpired = errors.New("token expired")

	// Session errors
	ErrInvalidPair        = errors.New("token pair requires both access and refresh tokens")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// API errors
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// Lock errors
	ErrLockMismatch = errors.New("lock password mismatch")

	// General errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
