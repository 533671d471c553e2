package core

import (
	"errors"
	"fmt"
	"strings"
)

// AuthenticationError reports a failed token acquisition, whatever the cause.
type AuthenticationError struct {
	Transport string
	Status    int
	RequestID string
	Body      string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return formatError(e.Transport, "authentication failed", e.Message, e.Status, e.Body, e.RequestID)
}

// Unwrap returns the underlying error for error chaining.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// APIError reports a failed chat completion, whatever the cause.
type APIError struct {
	Transport string
	Status    int
	RequestID string
	Body      string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return formatError(e.Transport, "api request failed", e.Message, e.Status, e.Body, e.RequestID)
}

// Unwrap returns the underlying error for error chaining.
func (e *APIError) Unwrap() error {
	return e.Err
}

func formatError(transport, kind, message string, status int, body, requestID string) string {
	var b strings.Builder
	if transport != "" {
		b.WriteString(transport)
		b.WriteString(": ")
	}
	b.WriteString(kind)
	if message != "" {
		b.WriteString(": ")
		b.WriteString(message)
	}
	if status != 0 {
		fmt.Fprintf(&b, " (status=%d", status)
		if requestID != "" {
			fmt.Fprintf(&b, ", request_id=%s", requestID)
		}
		b.WriteString(")")
	}
	if body != "" {
		b.WriteString(" - ")
		b.WriteString(body)
	}
	return b.String()
}

// Sentinel errors for classification.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrDecode       = errors.New("decode error")
	ErrMissingToken = errors.New("access token missing")
	ErrErrorField   = errors.New("response carries an error field")
)

// Validation errors with actionable guidance.
var (
	ErrCredentialsRequired = errors.New("no credentials provided: set GIGACHAT_CLIENT_ID and GIGACHAT_CLIENT_SECRET or run 'giga creds set'")
	ErrPromptRequired      = errors.New("user prompt required")
)

// IsAuthenticationError reports whether err is or wraps an *AuthenticationError.
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsAPIError reports whether err is or wraps an *APIError.
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
