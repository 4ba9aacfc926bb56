package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{http.StatusUnauthorized, ErrorClassAuth},
		{http.StatusForbidden, ErrorClassAuth},
		{http.StatusNotFound, ErrorClassNotFound},
		{http.StatusTooManyRequests, ErrorClassRateLimit},
		{http.StatusBadRequest, ErrorClassClient},
		{http.StatusConflict, ErrorClassClient},
		{http.StatusInternalServerError, ErrorClassServer},
		{http.StatusBadGateway, ErrorClassServer},
		{http.StatusServiceUnavailable, ErrorClassServer},
		{http.StatusOK, ErrorClass("")},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			if got := classifyStatus(tt.status); got != tt.want {
				t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  bool
	}{
		{ErrorClassAuth, false},
		{ErrorClassNotFound, false},
		{ErrorClassClient, false},
		{ErrorClassServer, true},
		{ErrorClassRateLimit, true},
		{ErrorClassNetwork, true},
		{ErrorClass(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			if got := shouldRetry(tt.class); got != tt.want {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.class, got, tt.want)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "without wrapped error",
			err: &APIError{
				StatusCode: 401,
				ErrorClass: ErrorClassAuth,
				Message:    "401 Unauthorized",
			},
			want: "wigle auth error (status 401): 401 Unauthorized",
		},
		{
			name: "with wrapped error",
			err: &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        errors.New("connection refused"),
			},
			want: "wigle network error (status 0): request failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &APIError{ErrorClass: ErrorClassNetwork, Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is failed to find wrapped error")
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "auth error",
			err:  &APIError{StatusCode: 401, ErrorClass: ErrorClassAuth},
			want: true,
		},
		{
			name: "wrapped auth error",
			err:  fmt.Errorf("fetch page 3: %w", &APIError{StatusCode: 403, ErrorClass: ErrorClassAuth}),
			want: true,
		},
		{
			name: "server error",
			err:  &APIError{StatusCode: 500, ErrorClass: ErrorClassServer},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	notFound := &APIError{StatusCode: 404, ErrorClass: ErrorClassNotFound}

	if !IsNotFound(notFound) {
		t.Error("IsNotFound() = false for 404 error")
	}
	if !IsNotFound(fmt.Errorf("detail: %w", notFound)) {
		t.Error("IsNotFound() = false for wrapped 404 error")
	}
	if IsNotFound(&APIError{StatusCode: 401, ErrorClass: ErrorClassAuth}) {
		t.Error("IsNotFound() = true for auth error")
	}
}
