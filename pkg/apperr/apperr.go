// Package apperr defines the error taxonomy shared by the HTTP, GraphQL and
// CLI surfaces. Every failure that reaches a request boundary is converted to
// an *AppError with From, which decides the status code and the public
// message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError carries a public message, an HTTP status and, for validation
// failures, the per-field messages.
type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Fields     map[string][]string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// New builds an AppError with an explicit code and status.
func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: status}
}

// WithError attaches the underlying cause.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// Validation is returned when input fails its rule set. message is the
// summary line; fields maps each failing field to its messages.
func Validation(message string, fields map[string][]string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Fields:     fields,
	}
}

// FieldError is a Validation error for a single field and message.
func FieldError(field, message string) *AppError {
	return Validation(message, map[string][]string{field: {message}})
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message, http.StatusBadRequest)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

// Internal hides err behind a generic message.
func Internal(err error) *AppError {
	return New(CodeInternal, "Server Error", http.StatusInternalServerError).WithError(err)
}

// IsAppError unwraps err to an *AppError if one is in the chain.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// From converts any error into an *AppError. A missing gorm record becomes a
// 404; anything unknown becomes a 500.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := IsAppError(err); ok {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("Not found").WithError(err)
	}
	return Internal(err)
}

// IsNotFound reports whether err resolves to a 404.
func IsNotFound(err error) bool {
	appErr := From(err)
	return appErr != nil && appErr.StatusCode == http.StatusNotFound
}
