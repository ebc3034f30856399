package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for errors.Is matching against the typed errors below.
//
// Example:
//
//	if errors.Is(err, ai.ErrValidation) {
//	    // fix the input and call again
//	}
var (
	ErrValidation     = errors.New("fastprompt: invalid request")
	ErrAuthentication = errors.New("fastprompt: authentication failed")
	ErrProvider       = errors.New("fastprompt: provider call failed")
)

// ValidationError reports malformed or empty input. It is always raised before
// any network call is attempted.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return "validation error: " + msg
}

func (e *ValidationError) Unwrap() error { return e.Cause }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// AuthenticationError reports a missing or rejected credential.
type AuthenticationError struct {
	Provider   string
	StatusCode int // zero when the credential was missing locally
	Message    string
}

// NewAuthenticationError creates an AuthenticationError for a missing credential.
func NewAuthenticationError(provider, message string) *AuthenticationError {
	return &AuthenticationError{Provider: provider, Message: message}
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%s] authentication error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("[%s] authentication error: %s", e.Provider, e.Message)
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

// ProviderError reports a failed vendor call: non-2xx status (rate limiting
// included), transport failure or timeout. Body holds the vendor's error detail.
type ProviderError struct {
	Provider   string
	StatusCode int // zero for transport failures
	Message    string
	Body       string
	Timeout    bool
	Cause      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("[%s] provider error", e.Provider)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Timeout {
		msg += " (timeout)"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Cause != nil && e.Message == "" {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Cause }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// RateLimited reports whether the vendor rejected the call with 429.
func (e *ProviderError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// ErrorFromStatus maps a non-2xx vendor status to the matching error kind.
func ErrorFromStatus(provider string, statusCode int, body string) error {
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return &AuthenticationError{Provider: provider, StatusCode: statusCode, Message: body}
	}
	return &ProviderError{Provider: provider, StatusCode: statusCode, Body: body}
}
