package domain

import (
	"errors"
	"fmt"
	"time"
)

// Ownership and lookup errors
var (
	ErrUnauthorized = errors.New("unauthorized action")
	ErrNotFound     = errors.New("not found")
	ErrNoProfile    = errors.New("user profile not found")
)

// Verification / reset code errors
var (
	ErrInvalidCode = errors.New("invalid code")
	ErrCodeExpired = errors.New("code has expired")
)

// Slug reservation ran out of retry attempts
var ErrConflict = errors.New("conflicting slug")

// ErrExternalService marks failures of dependencies outside the database,
// object storage in particular.
var ErrExternalService = errors.New("external service failure")

// ValidationError reports malformed input. It is always resolved before any
// transaction is opened.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// ErrValidation lets callers match any ValidationError with errors.Is.
var ErrValidation = errors.New("validation failed")

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RateLimitedError is returned when a verification or reset code is requested
// before the previous one's cool-down has passed.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
}

// ErrRateLimited lets callers match any RateLimitedError with errors.Is.
var ErrRateLimited = errors.New("rate limited")

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
