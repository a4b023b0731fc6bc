package resilience

import (
	"errors"
	"net/http"
)

// TransientError marks an error as safe to retry.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable. statusCode is 0 for network failures.
func Transient(err error, statusCode int) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err, StatusCode: statusCode}
}

// IsTransient reports whether err carries the Transient marker.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsTransientHTTPStatus reports whether a response status is worth retrying.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// unmark strips an outermost Transient marker.
func unmark(err error) error {
	if te, ok := err.(*TransientError); ok {
		return te.Err
	}
	return err
}
