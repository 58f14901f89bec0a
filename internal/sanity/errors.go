package sanity

import (
	"errors"
	"fmt"
)

// ErrEmptyTransaction is returned when committing a transaction without mutations.
var ErrEmptyTransaction = errors.New("transaction has no mutations")

// ErrNotConfigured indicates the project id or dataset is missing.
var ErrNotConfigured = errors.New("sanity project id and dataset are required")

// APIError represents a non-2xx response from the Sanity HTTP API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("sanity %s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("sanity %s: HTTP %d", e.Endpoint, e.StatusCode)
}

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}
