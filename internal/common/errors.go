package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by the repository when no row matches.
	ErrNotFound = errors.New("not found")

	// Authentication failures. Callers must not tell them apart in responses.
	ErrNoSuchUser  = errors.New("no such user")
	ErrBadPassword = errors.New("bad password")

	// Authorization failures.
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrAlreadyLoggedIn = errors.New("already logged in")
	ErrNotAuthorized   = errors.New("not authorized")
)

// ValidationError describes malformed client input. Message is safe to show.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StoreError wraps a failure of the backing store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsAuthenticationFailure reports whether err means the submitted
// credentials did not identify a user.
func IsAuthenticationFailure(err error) bool {
	return errors.Is(err, ErrNoSuchUser) || errors.Is(err, ErrBadPassword)
}

// IsStoreError reports whether err is, or wraps, a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
