// Package errors provides the classified error type shared by every data
// store. The route layer maps the status class to an HTTP response code.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Status represents the classification of a store error.
type Status string

const (
	StatusBadRequest   Status = "BAD_REQUEST"
	StatusUnauthorized Status = "UNAUTHORIZED"
	StatusNotFound     Status = "NOT_FOUND"
	StatusInternal     Status = "INTERNAL"
)

// StatusError is a structured error carrying a human-readable message and a
// status classification.
type StatusError struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("StatusError[%s]: %s", e.Status, e.Message)
}

// HTTPStatus returns the HTTP response code for the error's class.
func (e *StatusError) HTTPStatus() int {
	switch e.Status {
	case StatusBadRequest:
		return http.StatusBadRequest
	case StatusUnauthorized:
		return http.StatusUnauthorized
	case StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewBadRequest creates a non-retryable bad request error.
func NewBadRequest(message string) *StatusError {
	return &StatusError{Status: StatusBadRequest, Message: message}
}

// NewUnauthorized creates an error for credential or session failures.
func NewUnauthorized(message string) *StatusError {
	return &StatusError{Status: StatusUnauthorized, Message: message}
}

// NewNotFound creates an error for a lookup that matched no rows.
func NewNotFound(message string) *StatusError {
	return &StatusError{Status: StatusNotFound, Message: message}
}

// NewInternal creates an error for a store-side failure, keeping the
// underlying cause in Details.
func NewInternal(message string, cause error) *StatusError {
	e := &StatusError{Status: StatusInternal, Message: message}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// StatusOf returns the classification of err. Unclassified errors are
// treated as internal.
func StatusOf(err error) Status {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return StatusInternal
}

// IsStatus reports whether err is classified with the given status.
func IsStatus(err error, status Status) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
