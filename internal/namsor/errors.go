package namsor

import (
	"errors"
	"fmt"
)

// Common errors returned by the Namsor client.
var (
	// ErrNotFound indicates Namsor returned no classification for the name.
	ErrNotFound = errors.New("name not found in Namsor")

	// ErrAuthError indicates a missing or invalid API key.
	ErrAuthError = errors.New("Namsor authentication error")

	// ErrRateLimited indicates the request quota has been exceeded.
	ErrRateLimited = errors.New("Namsor rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with Namsor")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from Namsor")
)

// APIError represents an error status returned by the Namsor API.
type APIError struct {
	StatusCode int
	Message    string
	Name       string // For context in name-related errors
}

func (e *APIError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("Namsor API error (status %d): %s (name: %s)", e.StatusCode, e.Message, e.Name)
	}
	return fmt.Sprintf("Namsor API error (status %d): %s", e.StatusCode, e.Message)
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
