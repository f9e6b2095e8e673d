package backend

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnreachable means the request never got an answer: connection
	// failure or timeout. Safe to retry.
	ErrUnreachable = errors.New("cannot reach server")
	// ErrUnauthorized means the backend rejected the token (401/403). The
	// session token has already been cleared when this is returned.
	ErrUnauthorized = errors.New("not authorized")
)

const fallbackMessage = "Something went wrong. Please try again."

// APIError is a rejection answered by the backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", fallbackMessage, e.Status)
}

// UserMessage returns the text shown to the user for err
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnreachable), errors.Is(err, context.DeadlineExceeded):
		return "Cannot reach the server. Check your connection and try again."
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please sign in again."
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	}
	return fallbackMessage
}
