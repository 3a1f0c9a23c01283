package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized means no credential, or one the server rejected. The
	// client drops its session when this comes back from the server.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden means the credential is valid but lacks permission.
	ErrForbidden = errors.New("authorization denied")
	// ErrNotFound is returned for missing resources. Callers loading a cart
	// treat it as an empty cart, not a failure.
	ErrNotFound = errors.New("not found")
	// ErrValidation covers rejected input, client- or server-side.
	ErrValidation = errors.New("validation failed")
)

// APIError carries the HTTP status and server-provided message of a failed
// call. errors.Is matches it against the sentinel for its status class.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return nil
	}
}
