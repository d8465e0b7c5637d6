package internal

import (
	"errors"
	"fmt"
)

// ErrEmptyTranscript is returned when a session is submitted without text.
var ErrEmptyTranscript = &ValidationError{Field: "transcript", Reason: "must not be empty"}

// ValidationError represents a local input problem that never reaches the network
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// BackendError represents any failure reported by, or in reaching, the
// matching backend. Error returns the backend message unmodified.
type BackendError struct {
	Op      string // "health", "session", "match", "graph"
	Status  int    // HTTP status, 0 for transport failures
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s request failed", e.Op)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// PersistenceError represents an unreadable or corrupt stored identity
type PersistenceError struct {
	Path string
	Op   string // "open", "read", "parse", "write", "delete"
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// IsBackendError reports whether err carries a BackendError.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
