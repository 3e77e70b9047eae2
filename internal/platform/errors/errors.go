// Package errors provides the error taxonomy for newsrake and utilities
// for wrapping with context. It extends the standard errors package.
//
// Fetch failures are classified as transient (retried with backoff) or
// permanent (surfaced to the compensator as shortfall input). Only
// planner and configuration failures are fatal to a run.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for the run-level taxonomy
var (
	// ErrTransientFetch marks a fetch failure worth retrying
	// (network, timeout, rate limit).
	ErrTransientFetch = errors.New("transient fetch error")

	// ErrPermanentFetch marks a fetch failure that must not be retried
	// (source exhausted, no match, hard rejection).
	ErrPermanentFetch = errors.New("permanent fetch error")

	// ErrPlannerFailed indicates the planner adapter failed; fatal to
	// the run, nothing can be retrieved without sources.
	ErrPlannerFailed = errors.New("planner failed")

	// ErrQuotaInfeasible indicates requested minimums exceed the target
	// total; resolved by clamping, reported as a warning, never fatal.
	ErrQuotaInfeasible = errors.New("quota infeasible")

	// ErrRunDeadline indicates the run-level deadline expired; the run
	// completes with partial results.
	ErrRunDeadline = errors.New("run deadline exceeded")
)

// Sentinel errors for transport-level failures
var (
	ErrTimeout            = errors.New("operation timed out")
	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrConnectionFailed   = errors.New("connection failed")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrInvalidResponse    = errors.New("invalid response")
	ErrNotFound           = errors.New("resource not found")
)

// wrappedError wraps an error with additional context
type wrappedError struct {
	msg   string
	cause error
}

func (e *wrappedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *wrappedError) Unwrap() error {
	return e.cause
}

// Wrap wraps an error with additional context message.
// If err is nil, Wrap returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: msg, cause: err}
}

// Wrapf wraps an error with a formatted context message.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: fmt.Sprintf(format, args...), cause: err}
}

// Transient wraps err so that IsTransient reports true.
// A nil err yields a bare ErrTransientFetch.
func Transient(err error) error {
	if err == nil {
		return ErrTransientFetch
	}
	return fmt.Errorf("%w: %w", ErrTransientFetch, err)
}

// Permanent wraps err so that IsPermanent reports true.
// A nil err yields a bare ErrPermanentFetch.
func Permanent(err error) error {
	if err == nil {
		return ErrPermanentFetch
	}
	return fmt.Errorf("%w: %w", ErrPermanentFetch, err)
}

// Classify maps an arbitrary fetch error onto the taxonomy. Errors
// already classified pass through. Network/timeout/rate-limit failures
// become transient; everything else is permanent.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) || IsPermanent(err) {
		return err
	}

	var netErr net.Error
	switch {
	case errors.Is(err, ErrTimeout),
		errors.Is(err, ErrRateLimit),
		errors.Is(err, ErrConnectionFailed),
		errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return Transient(err)
	case errors.As(err, &netErr):
		return Transient(err)
	default:
		return Permanent(err)
	}
}

// IsTransient reports whether the error is a transient fetch error.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientFetch)
}

// IsPermanent reports whether the error is a permanent fetch error.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanentFetch)
}

// IsTimeout reports whether the error is a timeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsRateLimit reports whether the error is a rate limit error.
func IsRateLimit(err error) bool {
	return errors.Is(err, ErrRateLimit)
}

// Is reports whether any error in err's chain matches target.
// Convenience wrapper around errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type.
// Convenience wrapper around errors.As from the standard library.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New creates a new error with the given message.
// Convenience wrapper around errors.New from the standard library.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf formats according to a format specifier and returns an error.
// Convenience wrapper around fmt.Errorf.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Join returns an error that wraps the given errors, discarding nils.
// Convenience wrapper around errors.Join from the standard library.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
