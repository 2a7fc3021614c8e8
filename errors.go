package samples

import (
	"fmt"
	"net/http"
)

// Error codes of locally generated error responses
const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidClient     = "invalid_client"
	ErrorCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrorCodeServerError       = "server_error"
)

// HTTPError is an error the servers answer themselves, as opposed to the
// responses prepared by Authlete.
type HTTPError struct {
	Code        string
	Description string
	Status      int
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(code, description string, status int) *HTTPError {
	return &HTTPError{
		Code:        code,
		Description: description,
		Status:      status,
	}
}

var (
	// ErrInvalidRequest indicates a malformed request body
	ErrInvalidRequest = func(desc string) *HTTPError {
		return NewHTTPError(ErrorCodeInvalidRequest, desc, http.StatusBadRequest)
	}

	// ErrInvalidClient indicates missing or wrong API credentials
	ErrInvalidClient = func(desc string) *HTTPError {
		return NewHTTPError(ErrorCodeInvalidClient, desc, http.StatusUnauthorized)
	}

	// ErrRateLimitExceeded indicates the caller was throttled
	ErrRateLimitExceeded = func(desc string) *HTTPError {
		return NewHTTPError(ErrorCodeRateLimitExceeded, desc, http.StatusTooManyRequests)
	}

	// ErrServerError indicates an internal failure
	ErrServerError = func(desc string) *HTTPError {
		return NewHTTPError(ErrorCodeServerError, desc, http.StatusInternalServerError)
	}
)
