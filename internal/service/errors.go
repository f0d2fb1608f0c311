package service

import "errors"

// ErrorCode classifies failures for the HTTP boundary and for clients
// deciding whether to retry.
type ErrorCode string

const (
	CodeValidation ErrorCode = "VALIDATION"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	CodeConflict   ErrorCode = "CONFLICT"
	CodeUpstream   ErrorCode = "UPSTREAM_FAILURE"
	CodeInternal   ErrorCode = "INTERNAL"
)

// Error is an application error carrying a user-safe message and a
// machine-readable code. Status, when non-zero, overrides the default
// HTTP mapping for the code (used for processor-mapped responses).
type Error struct {
	Code    ErrorCode
	Message string
	Status  int
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Validation builds a VALIDATION error with a client-facing message.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// NotFound builds a NOT_FOUND error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// Conflict builds a CONFLICT error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Upstream wraps a payment-processor or storage failure. The wrapped cause
// goes to the log, the message to the client.
func Upstream(msg string, cause error) *Error {
	return &Error{Code: CodeUpstream, Message: msg, cause: cause}
}

// Internal wraps an unexpected failure behind a generic message.
func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "internal server error", cause: cause}
}

// AsError extracts an *Error from err, or classifies it as INTERNAL.
func AsError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
