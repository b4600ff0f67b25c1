package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Classification errors
	ErrClassifyRead ErrorCode = "CLASSIFY_READ"

	// Patch errors
	ErrPatchWrite   ErrorCode = "PATCH_WRITE"
	ErrPatchPartial ErrorCode = "PATCH_PARTIAL"

	// Dispatcher errors
	ErrUsage               ErrorCode = "USAGE"
	ErrSelfReference       ErrorCode = "SELF_REFERENCE"
	ErrInterpreterNotFound ErrorCode = "INTERPRETER_NOT_FOUND"
	ErrDispatcherMissing   ErrorCode = "DISPATCHER_MISSING"

	// Install errors
	ErrInstallFailed ErrorCode = "INSTALL_FAILED"
)

// Is re-exports the standard library helper so callers need a single errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

// As re-exports the standard library helper so callers need a single errors import.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// RebangError represents a structured error with code and details
type RebangError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RebangError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RebangError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RebangError) Is(target error) bool {
	var targetErr *RebangError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RebangError with the given code and message
func New(code ErrorCode, message string) *RebangError {
	return &RebangError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RebangError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RebangError {
	return &RebangError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RebangError
func Wrap(err error, code ErrorCode, message string) *RebangError {
	if err == nil {
		return nil
	}
	return &RebangError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RebangError {
	if err == nil {
		return nil
	}
	return &RebangError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RebangError) WithDetail(key string, value interface{}) *RebangError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var rerr *RebangError
	if errors.As(err, &rerr) {
		return rerr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RebangError
func GetErrorCode(err error) ErrorCode {
	var rerr *RebangError
	if errors.As(err, &rerr) {
		return rerr.Code
	}
	return ErrUnknown
}
