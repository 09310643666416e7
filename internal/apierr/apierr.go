// Package apierr holds the error taxonomy shared by the REST handlers, the
// REST client and the list-view controllers.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ValidationError is raised locally before a request is sent.
// Fields maps a field name to its message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns a ValidationError for a single field.
func Field(name, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{name: msg}}
}

// NetworkError means no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a 4xx/5xx answer, with the server's message and offending
// field when the body carried them.
type ServerError struct {
	Status  int
	Message string
	Field   string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Field != "" {
		return fmt.Sprintf("server error %d: %s (%s)", e.Status, msg, e.Field)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, msg)
}

// NotFoundError means the record is gone server-side, for example deleted
// by another operator.
type NotFoundError struct {
	Resource string
	ID       string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// IsUnauthorized reports a 401 answer. Those are surfaced to the caller and
// never retried.
func IsUnauthorized(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Status == http.StatusUnauthorized
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// UserMessage picks the text to show an operator: validation messages, the
// server-provided message, or fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var se *ServerError
	if errors.As(err, &se) {
		if se.Status == http.StatusUnauthorized {
			if se.Message != "" {
				return se.Message
			}
			return "session expired, please log in again"
		}
		if se.Message != "" {
			return se.Message
		}
		return fallback
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return fallback + ": server unreachable"
	}
	return fallback
}
