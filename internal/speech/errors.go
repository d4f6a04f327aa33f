package speech

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the speech service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("speech service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf(
		"speech service returned status %d: %s",
		e.StatusCode, e.Message,
	)
}

// Retryable reports whether the failure class may resolve on its own.
// Rate limits and server errors are retried; every other status is a
// permanent request error and fails fast.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// isRetryable classifies an arbitrary error for the retry loop. Transport
// failures are treated as transient.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	// anything that never reached the service: DNS, refused, reset
	return true
}

// IsQuotaExhausted reports whether err is a rate-limit failure that
// survived all retry attempts, so callers can surface a quota message.
func IsQuotaExhausted(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.StatusCode == http.StatusTooManyRequests
}
