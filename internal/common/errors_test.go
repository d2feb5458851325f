package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceError(t *testing.T) {
	err := &ServiceError{Service: "insights", Op: "summary", StatusCode: 503, Message: "Error: 503"}
	assert.Equal(t, "insights summary failed (status 503): Error: 503", err.Error())
	assert.True(t, err.Temporary())

	transport := &ServiceError{Service: "auth", Op: "login", Message: "connection refused", Err: context.DeadlineExceeded}
	assert.Equal(t, "auth login failed: connection refused", transport.Error())
	assert.ErrorIs(t, transport, context.DeadlineExceeded)

	assert.False(t, (&ServiceError{StatusCode: 404}).Temporary())
	assert.True(t, (&ServiceError{StatusCode: 429}).Temporary())
}

func TestServiceErrorMessage(t *testing.T) {
	tests := []struct {
		body map[string]any
		name string
		want string
	}{
		{name: "detail wins", body: map[string]any{"detail": "bad ruc", "message": "other"}, want: "bad ruc"},
		{name: "error", body: map[string]any{"error": "quota"}, want: "quota"},
		{name: "message", body: map[string]any{"message": "unsupported file"}, want: "unsupported file"},
		{name: "non-string detail", body: map[string]any{"detail": []any{"x"}}, want: "Error: 422"},
		{name: "empty body", body: nil, want: "Error: 422"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ServiceErrorMessage(tt.body, 422))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("flaky"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("fatal")}))
	assert.True(t, IsRetryable(&ServiceError{StatusCode: 502}))
	assert.False(t, IsRetryable(&ServiceError{StatusCode: 400}))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestUserError(t *testing.T) {
	err := NewUserError("sign in first", ErrNotAuthenticated)
	assert.Equal(t, "sign in first: not signed in", err.Error())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.Equal(t, "just text", NewUserError("just text", nil).Error())
}
