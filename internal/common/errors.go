package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Intake taxonomy. None of these is fatal; each is recoverable by user action.
var (
	ErrValidationRejection = errors.New("file rejected")
	ErrTransientSubmission = errors.New("submission failed")
	ErrEditCoercion        = errors.New("edit could not be applied")
	ErrNotEditing          = errors.New("record is read-only outside edit mode")
	ErrUnknownField        = errors.New("unknown field")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound reports whether err is, wraps, or carries a NotFound status.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return status.Code(err) == codes.NotFound
}

// IsConnectivity reports whether a gRPC status code means the peer could not be reached.
func IsConnectivity(code codes.Code) bool {
	return code == codes.Unavailable || code == codes.DeadlineExceeded
}
