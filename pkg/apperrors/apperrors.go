// Package apperrors defines the error taxonomy shared by the services and
// the HTTP layer.
package apperrors

import "fmt"

type AppError struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithDetail attaches an extra field surfaced in the JSON error body.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}

// Constructors

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func InvalidArg(msg string) *AppError {
	return New(CodeInvalidArgument, msg)
}

func NotFound(msg string) *AppError {
	return New(CodeNotFound, msg)
}

func AlreadyExists(msg string) *AppError {
	return New(CodeAlreadyExists, msg)
}

func Unauthorized(msg string) *AppError {
	return New(CodeUnauthenticated, msg)
}

func Forbidden(msg string) *AppError {
	return New(CodePermissionDenied, msg)
}

func Internal(msg string) *AppError {
	return New(CodeInternal, msg)
}
