package api

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrMissingData is returned when a successful response carries no `data` field.
	ErrMissingData = errors.New("response has no data")
	// ErrNoBaseURL is returned when the client is used without a backend URL.
	ErrNoBaseURL = errors.New("no API base URL configured")
)

// Error is a non-2xx backend response.
type Error struct {
	Status  int
	Message string // backend's human-readable message; may be empty
}

func (err *Error) Error() string {
	if err.Message != "" {
		return fmt.Sprintf("api: %d %s", err.Status, err.Message)
	}
	return fmt.Sprintf("api: %d %s", err.Status, http.StatusText(err.Status))
}

// StatusCode returns the HTTP status carried by `err`, or 0 when `err` is not an API error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether `err` is a 401 response: the session is no longer valid.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsNotFound reports whether `err` is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// Message returns the backend's message carried by `err` when present, otherwise `fallback`.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
