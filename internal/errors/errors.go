package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session and credential core
var (
	// Authentication errors
	// ErrInvalidCredentials covers both "identifier not found" and
	// "password mismatch" so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Email verification token errors
	ErrTokenInvalid = errors.New("verification token invalid")
	ErrTokenExpired = errors.New("verification token expired")

	// Session errors
	// ErrUnauthenticated is the single outcome for any session lookup that
	// yields no valid session: absent, expired, malformed, or orphaned.
	ErrUnauthenticated = errors.New("unauthenticated")

	// User errors
	ErrUserNotFound    = errors.New("user not found")
	ErrAlreadyVerified = errors.New("email already verified")
	ErrWalletNotLinked = errors.New("wallet address not linked to a user")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
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
