// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid configuration, parameters and versions
//   - Store errors (200-299): Trade store queries, persistence and imports
//   - Source errors (300-399): Trade source subscriptions and upstream fetches
//   - Output errors (400-499): Presentation, file writes and publishing
//   - Tracker errors (500-599): Tracker lifecycle and scheduling
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeRecordNotFound, "trade %s not found", id)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeRecordNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// SourceError reports a failure of an upstream trade source (disconnect,
// permission denial, rate limit). Sources hand it to the error handler of a
// subscription instead of delivering a snapshot.
type SourceError struct {
	Source  string // Source name, e.g. "binance"
	Message string // Human-readable message
	Cause   error
}

// NewSourceError creates a new SourceError.
func NewSourceError(source, message string, cause error) *SourceError {
	return &SourceError{
		Source:  source,
		Message: message,
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// IsSourceError checks if an error is a SourceError.
// It uses errors.As to check the error chain.
func IsSourceError(err error) bool {
	var sourceErr *SourceError

	return errors.As(err, &sourceErr)
}
