package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed generation.
type Kind string

const (
	KindTimeout   Kind = "timeout"
	KindAuth      Kind = "auth"
	KindRateLimit Kind = "rate_limit"
	KindMalformed Kind = "malformed_response"
	KindLength    Kind = "word_count"
	KindProvider  Kind = "provider"
	KindCancelled Kind = "cancelled"
)

// ErrEmptyResponse is returned when a provider answers without text.
var ErrEmptyResponse = errors.New("empty response")

// Error is a provider failure. Its message carries only the provider, kind and
// status code, never the provider's own message, which may echo request
// headers.
type Error struct {
	Kind       Kind
	Provider   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt against the same candidate can
// succeed. Auth failures and cancellation are final.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindAuth, KindCancelled:
		return false
	}
	return true
}

// KindOf returns the kind of err, or KindProvider when err is not an *Error.
func KindOf(err error) Kind {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Kind
	}
	if k, ok := contextKind(err); ok {
		return k
	}
	return KindProvider
}

// FromStatus wraps err with the kind implied by an HTTP status code.
func FromStatus(provider string, status int, err error) *Error {
	return &Error{Kind: statusKind(status), Provider: provider, StatusCode: status, Err: err}
}

// Wrap classifies err when the provider SDK gave no status code.
func Wrap(provider string, err error) *Error {
	if err == nil {
		return nil
	}
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr
	}
	kind := KindProvider
	if k, ok := contextKind(err); ok {
		kind = k
	} else if errors.Is(err, ErrEmptyResponse) {
		kind = KindMalformed
	}
	return &Error{Kind: kind, Provider: provider, Err: err}
}

func contextKind(err error) (Kind, bool) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout, true
	case errors.Is(err, context.Canceled):
		return KindCancelled, true
	}
	return "", false
}

func statusKind(status int) Kind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindProvider
	}
}
