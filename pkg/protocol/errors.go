package protocol

import (
	"fmt"
)

// FatalError indicates the connection is no longer usable. It is mainly
// caused by a misbehaving peer or wrong configuration.
type FatalError struct {
	Err error
}

// Error implements error.
func (e *FatalError) Error() string { return fmt.Sprintf("fatal: %v", e.Err) }

// Unwrap returns the wrapped error.
func (e *FatalError) Unwrap() error { return e.Err }

// InternalError indicates an error caused by the implementation itself,
// the connection is no longer usable.
type InternalError struct {
	Err error
}

// Error implements error.
func (e *InternalError) Error() string { return fmt.Sprintf("internal: %v", e.Err) }

// Unwrap returns the wrapped error.
func (e *InternalError) Unwrap() error { return e.Err }

// TemporaryError indicates the connection is still usable, only the
// current request failed.
type TemporaryError struct {
	Err error
}

// Error implements error.
func (e *TemporaryError) Error() string { return fmt.Sprintf("temporary: %v", e.Err) }

// Unwrap returns the wrapped error.
func (e *TemporaryError) Unwrap() error { return e.Err }

// Temporary implements net.Error.Temporary.
func (e *TemporaryError) Temporary() bool { return true }

// TimeoutError indicates the request timed out.
type TimeoutError struct {
	Err error
}

// Error implements error.
func (e *TimeoutError) Error() string { return fmt.Sprintf("timeout: %v", e.Err) }

// Unwrap returns the wrapped error.
func (e *TimeoutError) Unwrap() error { return e.Err }

// Timeout implements net.Error.Timeout.
func (e *TimeoutError) Timeout() bool { return true }

// Temporary implements net.Error.Temporary.
func (e *TimeoutError) Temporary() bool { return true }

// HandshakeError indicates the handshake failed.
type HandshakeError struct {
	Err error
}

// Error implements error.
func (e *HandshakeError) Error() string { return fmt.Sprintf("handshake error: %v", e.Err) }

// Unwrap returns the wrapped error.
func (e *HandshakeError) Unwrap() error { return e.Err }
