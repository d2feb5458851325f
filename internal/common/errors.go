// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound          = errors.New("not found")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrInsecureURL   = errors.New("insecure URL, HTTPS is required")

	// Authentication errors.
	ErrNotAuthenticated = errors.New("not signed in")
	ErrTokenExpired     = errors.New("session token expired")

	// Insights errors.
	ErrNoData          = errors.New("no data available")
	ErrPlaceholderData = errors.New("backend returned placeholder data")

	// Chat errors.
	ErrNotConnected  = errors.New("chat is not connected")
	ErrAwaitingReply = errors.New("still waiting for the previous reply")
	ErrEmptyMessage  = errors.New("message is empty")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// ServiceError is the structured failure returned by request/response calls
// against the remote services. Message is always human readable.
type ServiceError struct {
	Err        error
	Service    string
	Op         string
	Message    string
	StatusCode int
}

func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s failed (status %d): %s", e.Service, e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Service, e.Op, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the same request could succeed.
func (e *ServiceError) Temporary() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// ServiceErrorMessage picks the most specific message from a decoded JSON
// error body, falling back to the status code.
func ServiceErrorMessage(body map[string]any, status int) string {
	for _, key := range []string{"detail", "error", "message"} {
		if v, ok := body[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("Error: %d", status)
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Temporary()
	}

	return false
}
