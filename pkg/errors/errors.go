package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine readable codes carried in the error envelope.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNoActivePeriod     = "NO_ACTIVE_PERIOD"
	CodePeriodInactive     = "PERIOD_INACTIVE"
	CodeInternal           = "INTERNAL_ERROR"
	CodeCacheMiss          = "CACHE_MISS"
)

// Error is the client facing failure of an API operation. Err keeps the
// underlying cause for logs and is never serialised.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is compares by Code, so a sentinel with a replaced message still matches
// the sentinel under errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New builds a fresh error.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds an error that keeps err as its cause.
func Wrap(err error, code string, status int, message string) *Error {
	e := New(code, status, message)
	e.Err = err
	return e
}

// Sentinels shared by services and handlers.
var (
	ErrValidation         = New(CodeValidation, http.StatusBadRequest, "validation failed")
	ErrNotFound           = New(CodeNotFound, http.StatusNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, http.StatusBadRequest, "conflict")
	ErrUnauthorized       = New(CodeUnauthorized, http.StatusUnauthorized, "unauthorized")
	ErrForbidden          = New(CodeForbidden, http.StatusForbidden, "forbidden")
	ErrInvalidCredentials = New(CodeInvalidCredentials, http.StatusUnauthorized, "invalid username or password")
	ErrNoActivePeriod     = New(CodeNoActivePeriod, http.StatusBadRequest, "no active review period, please contact your administrator")
	ErrPeriodInactive     = New(CodePeriodInactive, http.StatusBadRequest, "review period is not open for submissions")
	ErrInternal           = New(CodeInternal, http.StatusInternalServerError, "internal server error")

	// ErrCacheMiss never reaches a client; it signals an absent results entry.
	ErrCacheMiss = New(CodeCacheMiss, http.StatusNotFound, "cache miss")
)

// Clone copies a sentinel, replacing its message when one is given.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Internal hides a store failure behind the generic internal error.
func Internal(err error, message string) *Error {
	return Wrap(err, CodeInternal, http.StatusInternalServerError, message)
}

// FromError returns the *Error in err's chain, or the generic internal
// error wrapping err when there is none.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, CodeInternal, http.StatusInternalServerError, ErrInternal.Message)
}

// StatusOf reports the HTTP status err maps to.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return FromError(err).Status
}
