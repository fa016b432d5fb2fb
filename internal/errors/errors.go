package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error for status mapping.
type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindInvalidCredential Kind = "INVALID_CREDENTIAL"
	KindAccountDisabled   Kind = "ACCOUNT_DISABLED"
	KindForbidden         Kind = "FORBIDDEN"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindUpstream          Kind = "UPSTREAM_ERROR"
	KindUnavailable       Kind = "UNAVAILABLE"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// FieldError describes one failed constraint on a request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the typed error returned by services and middleware.
type AppError struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error's kind.
func (e *AppError) StatusCode() int {
	return StatusCode(e.Kind)
}

func newError(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// Validation returns a validation error carrying every failed field.
func Validation(fields []FieldError) *AppError {
	return &AppError{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

// BadRequest is a validation error without field detail.
func BadRequest(message string) *AppError {
	return newError(KindValidation, message, nil)
}

func Unauthenticated(message string) *AppError {
	return newError(KindUnauthenticated, message, nil)
}

func InvalidCredential(message string) *AppError {
	return newError(KindInvalidCredential, message, nil)
}

func AccountDisabled(message string) *AppError {
	return newError(KindAccountDisabled, message, nil)
}

func Forbidden(message string) *AppError {
	return newError(KindForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return newError(KindNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return newError(KindConflict, message, nil)
}

func Upstream(message string, err error) *AppError {
	return newError(KindUpstream, message, err)
}

func Unavailable(message string) *AppError {
	return newError(KindUnavailable, message, nil)
}

func Internal(message string, err error) *AppError {
	return newError(KindInternal, message, err)
}

// As extracts the AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusCode maps an error kind to its HTTP status code.
// Conflicts are reported as 400 to match the duplicate-review and duplicate-email contract.
func StatusCode(kind Kind) int {
	switch kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidCredential, KindAccountDisabled:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the failure envelope written for every error.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// NewErrorResponse builds the envelope for err. Detail from the wrapped cause
// is only included when verbose is set.
func NewErrorResponse(err *AppError, verbose bool) ErrorResponse {
	resp := ErrorResponse{Message: err.Message, Errors: err.Fields}
	if verbose && err.Err != nil {
		resp.Error = err.Err.Error()
	}
	return resp
}
