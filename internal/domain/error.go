package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrCorruptRecord     = errors.New("stored record is corrupt")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrQueueFull         = errors.New("worker queue full")
	ErrPoolStopped       = errors.New("worker pool stopped")
	ErrStoreClosed       = errors.New("store is closed")
	ErrAIUnavailable     = errors.New("ai service unavailable")
)

// ValidationError is a client input problem; Msg is safe to show to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

func NewValidationError(msg string) error { return &ValidationError{Msg: msg} }
