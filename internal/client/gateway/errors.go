package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a gateway failure.
type Kind string

const (
	// KindValidation: the server rejected the input, or its response did not
	// match the schema.
	KindValidation   Kind = "validation"
	KindTransport    Kind = "transport"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "notFound"
)

// Error is the only error type returned by Client methods.
type Error struct {
	Kind    Kind
	Status  int // 0 when no response was received
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a gateway error of the given kind.
func IsKind(err error, kind Kind) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.Kind == kind
}

// Retryable reports whether repeating the call may succeed.
func Retryable(err error) bool {
	return IsKind(err, KindTransport)
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests || status >= 500:
		return KindTransport
	case status >= 400:
		return KindValidation
	default:
		return KindTransport
	}
}

func defaultMessage(kind Kind, status int) string {
	switch kind {
	case KindUnauthorized:
		return "please sign in again"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "the request was rejected"
	}
	if status > 0 {
		return fmt.Sprintf("server error (%d), please try again", status)
	}
	return "network error, please try again"
}
