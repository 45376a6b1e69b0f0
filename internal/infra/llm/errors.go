package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// TransientError wraps a failure that may succeed on a later attempt
// (timeouts, rate limits, provider 5xx).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient: %v", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// FatalError wraps a failure that will not go away on retry
// (bad credentials, unknown model, malformed request).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return fmt.Sprintf("fatal: %v", e.Err) }
func (e *FatalError) Unwrap() error { return e.Err }

func NewTransientError(err error) error { return &TransientError{Err: err} }
func NewFatalError(err error) error     { return &FatalError{Err: err} }

func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

func IsFatal(err error) bool {
	var f *FatalError
	return errors.As(err, &f)
}

// StatusError is returned by HTTP-based adapters for non-2xx replies.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider status %d: %s", e.Code, e.Body)
}

// Classify wraps err as transient or fatal. Already classified errors are returned as-is.
func Classify(err error) error {
	if err == nil || IsTransient(err) || IsFatal(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTransientError(err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var se *StatusError
	if errors.As(err, &se) {
		if se.Code == http.StatusTooManyRequests || se.Code >= 500 {
			return NewTransientError(err)
		}
		return NewFatalError(err)
	}
	return NewTransientError(err)
}
