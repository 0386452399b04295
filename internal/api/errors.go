package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call.
type Kind string

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = "network"
	// KindStatus means the backend answered with a non-2xx status.
	KindStatus Kind = "status"
	// KindApplication means a 2xx response carried success:false.
	KindApplication Kind = "application"
	// KindValidation means the request was rejected locally before any call.
	KindValidation Kind = "validation"
	// KindTimeout means the call did not finish in time.
	KindTimeout Kind = "timeout"
	// KindCanceled means the caller gave up.
	KindCanceled Kind = "canceled"
	// KindDecode means the response body could not be parsed.
	KindDecode Kind = "decode"
)

const (
	// MessageConnectivity is shown when the backend could not be reached.
	MessageConnectivity = "Connection error. Check your internet connection."
	// MessageUnknownBackend stands in for a missing backend message.
	MessageUnknownBackend = "Unknown error"
)

// Error is the single error type returned by the client and every service built on it.
type Error struct {
	Kind           Kind
	Status         int
	Message        string
	BackendMessage string
	Route          string
	Err            error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusMessage maps an HTTP status to the message shown to the user.
func StatusMessage(status int, backendMessage string) string {
	backendMessage = strings.TrimSpace(backendMessage)
	if backendMessage == "" {
		backendMessage = MessageUnknownBackend
	}

	switch status {
	case 0:
		return MessageConnectivity
	case http.StatusBadRequest:
		return "Invalid request: " + backendMessage
	case http.StatusUnauthorized:
		return "Not authenticated. Please log in."
	case http.StatusForbidden:
		return "Access denied. You do not have permission for this action."
	case http.StatusNotFound:
		return "Resource not found."
	case http.StatusUnprocessableEntity:
		return "Invalid data: " + backendMessage
	case http.StatusTooManyRequests:
		return "Too many requests. Try again later."
	case http.StatusInternalServerError:
		return "Internal server error. Try again later."
	case http.StatusBadGateway:
		return "Service temporarily unavailable."
	case http.StatusServiceUnavailable:
		return "Service under maintenance."
	default:
		return fmt.Sprintf("Error %d: %s", status, backendMessage)
	}
}

// NewStatusError builds the error for a non-2xx response.
func NewStatusError(status int, backendMessage string) *Error {
	return &Error{
		Kind:           KindStatus,
		Status:         status,
		Message:        StatusMessage(status, backendMessage),
		BackendMessage: backendMessage,
	}
}

// NewValidationError reports a request rejected before it was sent.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// AsError extracts an *Error from err, wrapping foreign errors as network failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Kind: KindNetwork, Message: MessageConnectivity, Err: err}
}

// KindOf returns the kind of err, or "" when err is nil.
func KindOf(err error) Kind {
	if apiErr := AsError(err); apiErr != nil {
		return apiErr.Kind
	}
	return ""
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

func statusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
