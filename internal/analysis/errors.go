package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackzampolin/docsmith/internal/providers"
)

// ServiceError reports a failure reaching the text-analysis service:
// transport, authentication, rate limiting or cancellation. StatusCode is
// zero when no HTTP response was received.
type ServiceError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("analysis service %s failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("analysis service %s failed: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Auth reports whether the service rejected the credentials.
func (e *ServiceError) Auth() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// Retryable reports whether a caller-side retry may succeed.
func (e *ServiceError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

// ResponseFormatError reports a complete response that is not the expected
// JSON shape. Raw holds the response text as received.
type ResponseFormatError struct {
	Raw string
	Err error
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("analysis response is not valid: %v", e.Err)
}

func (e *ResponseFormatError) Unwrap() error { return e.Err }

// ResponseTruncatedError reports a response cut short at the token limit
// that could not be repaired. Raw is the response as received and Repaired
// the text the repair stage produced.
type ResponseTruncatedError struct {
	Raw      string
	Repaired string
	Err      error
}

func (e *ResponseTruncatedError) Error() string {
	return fmt.Sprintf("analysis response truncated and could not be repaired: %v", e.Err)
}

func (e *ResponseTruncatedError) Unwrap() error { return e.Err }

func serviceError(provider string, err error) *ServiceError {
	se := &ServiceError{Provider: provider, Err: err}
	if apiErr, ok := providers.IsAPIError(err); ok {
		se.StatusCode = apiErr.StatusCode
	}
	return se
}

// IsRetryable reports whether err is a ServiceError worth retrying.
// Format and truncation errors and cancellations are not.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *ServiceError
	return errors.As(err, &se) && se.Retryable()
}
