// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Dependency errors.
	ErrUnavailable = errors.New("dependency unavailable")

	// Input errors.
	ErrMalformedInput = errors.New("malformed input")

	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Rule engine errors.
	ErrDuplicateRule = errors.New("duplicate rule id")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// Unavailable wraps ErrUnavailable with the name of the missing dependency.
func Unavailable(dependency, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrUnavailable, dependency, reason)
}

// Malformed wraps ErrMalformedInput with a description of what could not be parsed.
func Malformed(what string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrMalformedInput, what)
	}
	return fmt.Errorf("%w: %s: %v", ErrMalformedInput, what, err)
}
