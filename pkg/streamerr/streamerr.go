// Package streamerr provides the error taxonomy for the streaming layer.
// Heterogeneous low-level failures (HTTP status codes, transport drops, JSON
// parse failures, auth expiry) are folded into a small closed set of classes
// the rest of the system acts on uniformly: transport and unknown failures
// are retryable, parse failures are dropped, auth failures are fatal for the
// stream that hit them.
package streamerr

import (
	"errors"
	"fmt"
	"net/http"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the streaming layer.
var (
	// ErrStreamClosed indicates an operation on a stream after teardown
	ErrStreamClosed = errors.New("stream closed")

	// ErrRetryExhausted indicates reconnection gave up after the bounded
	// attempt count
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrTokenRequired indicates the endpoint rejected an absent token
	ErrTokenRequired = errors.New("token required")

	// ErrTokenExpired indicates the endpoint rejected an expired or
	// invalid token
	ErrTokenExpired = errors.New("token expired or invalid")

	// ErrBadFrame indicates an inbound frame that could not be parsed
	ErrBadFrame = errors.New("malformed frame")
)

// Class is the closed set of failure categories.
type Class int

// Failure classes, from least to most specific handling.
const (
	// ClassUnknown covers anything unrecognized; treated conservatively
	// as retryable
	ClassUnknown Class = iota

	// ClassTransport covers connection drops, refusals, and non-auth
	// HTTP failures; retried up to the bounded attempt count
	ClassTransport

	// ClassParse covers malformed frames; the frame is dropped, the
	// stream continues, no retry is consumed
	ClassParse

	// ClassAuth covers expired or invalid tokens; fatal for the stream
	ClassAuth
)

// String returns the class name for logging.
func (c Class) String() string {
	switch c {
	case ClassTransport:
		return "transport"
	case ClassParse:
		return "parse"
	case ClassAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// TransportError represents a connection-level failure on a stream.
type TransportError struct {
	URL     string // redacted URL, never carries the token
	Attempt int
	Status  int
	Err     error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error for %s (status %d, attempt %d): %v", e.URL, e.Status, e.Attempt, e.Err)
	}
	return fmt.Sprintf("transport error for %s (attempt %d): %v", e.URL, e.Attempt, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError.
func NewTransportError(url string, attempt int, err error) *TransportError {
	return &TransportError{URL: url, Attempt: attempt, Err: err}
}

// FrameError represents a frame that failed to parse as a wire envelope.
type FrameError struct {
	Event string // transport event name, if any
	Err   error
}

// Error implements the error interface.
func (e *FrameError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("malformed %s frame: %v", e.Event, e.Err)
	}
	return fmt.Sprintf("malformed frame: %v", e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *FrameError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *FrameError) Is(target error) bool {
	return target == ErrBadFrame
}

// NewFrameError creates a new FrameError.
func NewFrameError(event string, err error) *FrameError {
	return &FrameError{Event: event, Err: err}
}

// AuthError represents a token rejection by the push endpoint.
type AuthError struct {
	Status int
	Err    error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected (status %d)", e.Status)
}

// Unwrap implements errors.Unwrap.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *AuthError) Is(target error) bool {
	if e.Status == http.StatusUnauthorized {
		return target == ErrTokenExpired
	}
	return target == ErrTokenRequired || target == ErrTokenExpired
}

// NewAuthError creates a new AuthError from an HTTP status.
func NewAuthError(status int) *AuthError {
	return &AuthError{Status: status}
}

// RetryExhaustedError reports that a stream gave up reconnecting.
type RetryExhaustedError struct {
	URL      string
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("gave up on %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *RetryExhaustedError) Is(target error) bool {
	return target == ErrRetryExhausted
}

// Classify maps an arbitrary error onto the taxonomy.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return ClassAuth
	}
	var frameErr *FrameError
	if errors.As(err, &frameErr) {
		return ClassParse
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return ClassTransport
	}
	var exhausted *RetryExhaustedError
	if errors.As(err, &exhausted) {
		return ClassTransport
	}
	return ClassUnknown
}

// ClassifyStatus maps an HTTP status code onto the taxonomy.
func ClassifyStatus(status int) Class {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ClassAuth
	case status >= 400:
		return ClassTransport
	default:
		return ClassUnknown
	}
}

// Helper functions for error checking

// IsRetryable reports whether a failed connection attempt should be retried.
// Transport and unknown failures are retryable; auth and parse failures are
// not.
func IsRetryable(err error) bool {
	switch Classify(err) {
	case ClassAuth, ClassParse:
		return false
	default:
		return true
	}
}

// IsAuth checks if an error is an authentication failure.
func IsAuth(err error) bool {
	return Classify(err) == ClassAuth
}

// IsFrame checks if an error is a malformed-frame failure.
func IsFrame(err error) bool {
	return errors.Is(err, ErrBadFrame)
}

// IsRetryExhausted checks if an error is a terminal reconnect failure.
func IsRetryExhausted(err error) bool {
	return errors.Is(err, ErrRetryExhausted)
}

// IsStreamClosed checks if an error came from a closed stream.
func IsStreamClosed(err error) bool {
	return errors.Is(err, ErrStreamClosed)
}

// Reporter receives every classified failure for logging or telemetry. It
// never affects control flow.
type Reporter func(class Class, err error)

// NopReporter discards all reports.
func NopReporter(Class, error) {}
