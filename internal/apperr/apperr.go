// Package apperr defines the status-coded error taxonomy surfaced to API
// callers. Every failure a handler can return maps to one of these.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

type Error struct {
	Status   int
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

func New(status int, messages ...string) *Error {
	if len(messages) == 0 {
		messages = []string{http.StatusText(status)}
	}
	return &Error{Status: status, Messages: messages}
}

func BadRequest(messages ...string) *Error {
	return New(http.StatusBadRequest, messages...)
}

func Unauthorized(messages ...string) *Error {
	return New(http.StatusUnauthorized, messages...)
}

func Forbidden(messages ...string) *Error {
	return New(http.StatusForbidden, messages...)
}

func NotFound(messages ...string) *Error {
	return New(http.StatusNotFound, messages...)
}

func Conflict(messages ...string) *Error {
	return New(http.StatusConflict, messages...)
}

func Internal(messages ...string) *Error {
	return New(http.StatusInternalServerError, messages...)
}

// StatusOf resolves the HTTP status for any error; non-taxonomy errors are
// reported as internal.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// MessagesOf resolves the caller-facing message list for any error.
func MessagesOf(err error) []string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Messages
	}
	return []string{"Internal server error"}
}
