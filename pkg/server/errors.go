package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for session and server conditions.
var (
	// ErrSessionBusy is returned when a session already has a connection.
	ErrSessionBusy = errors.New("server: session already connected")

	// ErrServerClosed is returned when a connection arrives during shutdown.
	ErrServerClosed = errors.New("server: shutting down")

	// ErrInvalidSessionID is returned for empty or oversized session IDs.
	ErrInvalidSessionID = errors.New("server: invalid session id")
)

// SessionError wraps an error with session context for debugging.
type SessionError struct {
	SessionID string
	Op        string // Operation that failed
	Err       error  // Underlying error
}

// Error returns the error message with session context.
func (e *SessionError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("server: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("server: session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a new SessionError.
func NewSessionError(sessionID, op string, err error) *SessionError {
	return &SessionError{
		SessionID: sessionID,
		Op:        op,
		Err:       err,
	}
}
