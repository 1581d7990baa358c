// Package errors holds the API error envelope rendered by handlers as
// {"error":{"code","message","details"}}.
package errors

import (
	"fmt"
	"net/http"
)

const (
	CodeInternal     = "internal_error"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
)

type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// WithDetails returns a copy of e carrying details.
func (e *APIError) WithDetails(details interface{}) *APIError {
	out := *e
	out.Details = details
	return &out
}

func New(status int, code, message string) *APIError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{Status: status, Code: code, Message: message}
}

func Internal(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return New(http.StatusInternalServerError, CodeInternal, message)
}

func BadRequest(code, message string) *APIError {
	return New(http.StatusBadRequest, code, message)
}

// Validation is a 400 that names the offending input field.
func Validation(code, field, message string) *APIError {
	return BadRequest(code, message).WithDetails(map[string]string{"field": field})
}

func Unauthorized(message string) *APIError {
	if message == "" {
		message = "unauthorized"
	}
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(message string) *APIError {
	if message == "" {
		message = "forbidden"
	}
	return New(http.StatusForbidden, CodeForbidden, message)
}

func NotFound(code, message string) *APIError {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string, details interface{}) *APIError {
	return New(http.StatusConflict, code, message).WithDetails(details)
}
