package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Session errors
	ErrSessionNotFound = errors.New("chat session not found")
	ErrSessionConflict = errors.New("chat session conflict")

	// Retrieval errors
	ErrRetrievalNotConfigured = errors.New("retrieval service is not configured")

	// Speech errors
	ErrSpeechNotConfigured = errors.New("speech service is not configured")

	// Validation errors
	ErrMissingField  = errors.New("required field is missing")
	ErrInvalidFormat = errors.New("invalid format")
)

// RetrievalError marks a failed retrieval round-trip (network failure,
// timeout, malformed payload). The orchestrator collapses it to an empty
// result set; it never reaches the HTTP boundary as an error.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval degraded: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// StatusError carries an HTTP-equivalent status code for a generation
// failure, with a message that is safe to show to the client.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}
