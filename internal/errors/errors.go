package errors

import (
	"errors"
	"fmt"
)

// Error is the structured error type for Regestra.
// It provides error codes for stable caller dispatch and rich context
// for logging and CLI presentation.
type Error struct {
	// Code is the unique error code (e.g., "ERR_601_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Storage, Domain, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with Error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates an Error from an existing error.
// The error's message becomes the Error message.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotFound creates a domain not-found error for the given entity kind and id.
func NotFound(kind string, id int64) *Error {
	return New(ErrCodeNotFound, fmt.Sprintf("%s %d not found", kind, id), nil).
		WithDetail("kind", kind)
}

// Conflict creates a domain conflict error (e.g., duplicate component name).
func Conflict(message string) *Error {
	return New(ErrCodeConflict, message, nil)
}

// InvalidInput creates a validation error.
func InvalidInput(message string) *Error {
	return New(ErrCodeInvalidInput, message, nil)
}

// TransactionAborted wraps a failure inside an atomic mutation sequence.
// The whole operation rolled back; no partial effect was committed.
func TransactionAborted(op string, cause error) *Error {
	return New(ErrCodeTransactionAborted, fmt.Sprintf("%s aborted", op), cause).
		WithDetail("operation", op)
}

// Internal creates an internal error.
func Internal(message string, cause error) *Error {
	return New(ErrCodeInternal, message, cause)
}

// IsNotFound reports whether err carries the not-found code.
func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

// IsConflict reports whether err carries the conflict code.
func IsConflict(err error) bool {
	return HasCode(err, ErrCodeConflict)
}

// IsInvalidInput reports whether err belongs to the validation category.
func IsInvalidInput(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == CategoryValidation
	}
	return false
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code, or ERR_501_INTERNAL for plain errors.
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}
