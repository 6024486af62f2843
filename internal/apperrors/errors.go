// Package apperrors defines the error kinds shared by the store, the HTTP layer and the
// polling client.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports malformed input. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// ForbiddenError reports an authenticated caller acting on a record it does not own.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// ConflictError reports a request that clashes with existing state, such as a
// second like of the same post.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// AuthError reports a missing, invalid or expired credential.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// TransientNetworkError wraps a failed request that the next poll tick may retry.
type TransientNetworkError struct {
	Err error
}

func (e *TransientNetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NotFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func Forbidden(message string) error {
	return &ForbiddenError{Message: message}
}

func Conflict(message string) error {
	return &ConflictError{Message: message}
}

func Unauthorized(message string) error {
	return &AuthError{Message: message}
}

func Transient(err error) error {
	return &TransientNetworkError{Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

func IsTransient(err error) bool {
	var target *TransientNetworkError
	return errors.As(err, &target)
}

// StatusCode maps an error to the HTTP status reported to the caller.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsForbidden(err):
		return http.StatusForbidden
	case IsConflict(err):
		return http.StatusConflict
	case IsAuth(err):
		return http.StatusUnauthorized
	case IsTransient(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
