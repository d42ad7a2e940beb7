package parkgate

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is an exported constant or variable used by the coordination layer.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is an exported constant or variable used by the coordination layer.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is an exported constant or variable used by the coordination layer.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionInvalidated is an exported constant or variable used by the coordination layer.
	ErrSessionInvalidated = errors.New("session invalidated while call was in flight")
	// ErrClientNotReady is an exported constant or variable used by the coordination layer.
	ErrClientNotReady = errors.New("client not ready")
	// ErrBootstrapRequired is an exported constant or variable used by the coordination layer.
	ErrBootstrapRequired = errors.New("bootstrap has not resolved")
)

// ValidationError carries a caller-level failure from the facility API, such
// as rejected login input. It has no global effect; the Coordinator passes it
// through untouched.
type ValidationError struct {
	Status  int
	Message string
}

// Error describes the error operation and its observable behavior.
//
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("validation failed (status %d)", e.Status)
	}
	return fmt.Sprintf("validation failed (status %d): %s", e.Status, e.Message)
}

// ServerError carries a 5xx outcome from the facility API.
type ServerError struct {
	Status  int
	Message string
}

// Error describes the error operation and its observable behavior.
//
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (status %d)", e.Status)
	}
	return fmt.Sprintf("server error (status %d): %s", e.Status, e.Message)
}

// NetworkError wraps a transport failure where no response reached the
// client. The startup probe treats it conservatively as failed auth; a
// background resource call must not invalidate an authenticated session on
// one.
type NetworkError struct {
	Op  string
	Err error
}

// Error describes the error operation and its observable behavior.
//
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

// Unwrap describes the unwrap operation and its observable behavior.
//
// Unwrap does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is (or wraps) a transport-level failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
