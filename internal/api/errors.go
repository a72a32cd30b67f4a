package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failed remote call: a non-2xx status or a success=false
// payload. Status 0 means the request never produced a response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// IsAuth reports whether the failure means the server rejected the
// session. Callers treat it as a forced-logout signal.
func (e *Error) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// decodeErrorMessage replaces unparseable response bodies; the raw bytes
// are never surfaced to the user.
const decodeErrorMessage = "invalid server response"

func newDecodeError(status int) *Error {
	return &Error{Status: status, Message: decodeErrorMessage}
}

// IsAuthError reports whether err (anywhere in its chain) is an
// authorization failure.
func IsAuthError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.IsAuth()
}

// ErrorMessage extracts the user-facing message from err, falling back
// to a generic one for unexpected failures.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Something went wrong. Please try again."
}
