// Package errors provides standardized domain errors with codes for the Agrix API.
//
// Usage:
//
//	// In services - return typed errors
//	if errors.Is(err, store.ErrNotFound) {
//	    return nil, errors.ErrCropNotFound.WithCause(err)
//	}
//
//	// In handlers or callers - check with errors.Is
//	if errors.Is(err, errors.ErrCropNotFound) { ... } // crop lookups only
//	if errors.Is(err, errors.ErrNotFound) { ... }     // any entity
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is = errors.Is
	As = errors.As
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound    Code = "NOT_FOUND"
	CodeValidation  Code = "VALIDATION"
	CodeRateLimited Code = "RATE_LIMITED"
	CodeInternal    Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Entity names used to specialise NotFound errors.
const (
	EntityFarm       = "farm"
	EntityCrop       = "crop"
	EntityFertilizer = "fertilizer"
)

// Error is a domain error with a code, message, and optional details.
// Entity narrows a NotFound error to one record kind.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Entity  string `json:"-"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Codes must match. A target without an Entity matches every entity,
// so ErrNotFound matches ErrFarmNotFound but not the other way around.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if e.Code != t.Code {
		return false
	}
	return t.Entity == "" || t.Entity == e.Entity
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Entity:  e.Entity,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Entity:  e.Entity,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound   = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation = &Error{Code: CodeValidation, Message: "validation error"}

	ErrFarmNotFound       = &Error{Code: CodeNotFound, Entity: EntityFarm, Message: "farm not found"}
	ErrCropNotFound       = &Error{Code: CodeNotFound, Entity: EntityCrop, Message: "crop not found"}
	ErrFertilizerNotFound = &Error{Code: CodeNotFound, Entity: EntityFertilizer, Message: "fertilizer not found"}
)

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// RateLimited creates a rate limited error.
func RateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}
