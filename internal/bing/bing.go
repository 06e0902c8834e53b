// Package bing provides clients for the Bing image search API and the Azure
// Face detection API.
package bing

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SearchEndpoint is the Bing search API host.
	SearchEndpoint = "https://api.bing.microsoft.com"

	// FaceEndpoint is the default Azure Face API host.
	FaceEndpoint = "https://westeurope.api.cognitive.microsoft.com"

	// RateLimit matches the S1 pricing tier of both services.
	RateLimit = 3.0

	keyHeader = "Ocp-Apim-Subscription-Key"
)

var (
	// ErrAuthError indicates a missing or invalid subscription key.
	ErrAuthError = errors.New("Azure authentication error")

	// ErrRateLimited indicates the request quota has been exceeded.
	ErrRateLimited = errors.New("Azure rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with Azure")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from Azure")
)

// APIError represents an error status returned by an Azure API.
type APIError struct {
	StatusCode int
	Service    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d)", e.Service, e.StatusCode)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 429
}

func checkStatus(resp *http.Response, service string) error {
	switch {
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return fmt.Errorf("%w: %s status %d", ErrAuthError, service, resp.StatusCode)
	case resp.StatusCode == 429:
		return fmt.Errorf("%w: %s status %d", ErrRateLimited, service, resp.StatusCode)
	case resp.StatusCode >= 400:
		return &APIError{StatusCode: resp.StatusCode, Service: service}
	}
	return nil
}
