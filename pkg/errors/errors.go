package errors

import "errors"

// Kind classifies a business error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindValidation
)

// String returns the lower-case kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// AppError is an expected business failure whose message is safe to show to
// the end user. Services declare them as package-level sentinels so callers
// can match with errors.Is.
type AppError struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *AppError) Error() string { return e.Message }

// New creates an AppError.
func New(kind Kind, code int, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// Unauthorized 10002
func Unauthorized(message string) *AppError { return New(KindUnauthorized, 10002, message) }

// Forbidden 10003
func Forbidden(message string) *AppError { return New(KindForbidden, 10003, message) }

// NotFound creates a not-found error with a module code.
func NotFound(code int, message string) *AppError { return New(KindNotFound, code, message) }

// Conflict creates a state-precondition error with a module code.
func Conflict(code int, message string) *AppError { return New(KindConflict, code, message) }

// Validation creates an input error with a module code.
func Validation(code int, message string) *AppError { return New(KindValidation, code, message) }

// As extracts the AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ── Shared sentinels ──

var (
	// ErrUnauthorized the caller could not be resolved to an active user
	ErrUnauthorized = Unauthorized("Unauthorized")
	// ErrOptimisticLock the record was modified by another request
	ErrOptimisticLock = Conflict(10006, "The record was modified by another request, please refresh and retry")
)
