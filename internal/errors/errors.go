package errors

import (
	"errors"
	"fmt"
)

// Exit codes for forage-runtime
const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUnavailable   = 2
	ExitConfigError   = 3
	ExitWorkspace     = 4
	ExitProcessFailed = 5
)

// ErrUnavailable is matched by every "sandbox unavailable" error.
//
//	if errors.Is(err, errors.ErrUnavailable) { ... }
var ErrUnavailable = errors.New("sandbox unavailable")

// RuntimeError is the base error type for forage-runtime
type RuntimeError struct {
	Code    int
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// Is reports unavailable errors as ErrUnavailable regardless of their cause.
func (e *RuntimeError) Is(target error) bool {
	return target == ErrUnavailable && e.Code == ExitUnavailable
}

// ExitCode returns the exit code for this error
func (e *RuntimeError) ExitCode() int {
	return e.Code
}

// New creates a new RuntimeError
func New(code int, message string) *RuntimeError {
	return &RuntimeError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a RuntimeError
func Wrap(code int, message string, cause error) *RuntimeError {
	return &RuntimeError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// Unavailable returns an error for an operation the sandbox cannot serve,
// either because it is not ready or because bringing it up failed.
func Unavailable(op string, cause error) *RuntimeError {
	return Wrap(ExitUnavailable, fmt.Sprintf("sandbox unavailable for %s", op), cause)
}

// NotReady returns an unavailable error for a sandbox in the given state
func NotReady(op, state string) *RuntimeError {
	return New(ExitUnavailable, fmt.Sprintf("sandbox unavailable for %s: state is %s", op, state))
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *RuntimeError {
	return Wrap(ExitConfigError, message, cause)
}

// WorkspaceError returns an error for workspace root problems
func WorkspaceError(op string, cause error) *RuntimeError {
	return Wrap(ExitWorkspace, fmt.Sprintf("workspace %s failed", op), cause)
}

// ProcessFailed returns an error for process manager operations
func ProcessFailed(op string, cause error) *RuntimeError {
	return Wrap(ExitProcessFailed, fmt.Sprintf("process %s failed", op), cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *RuntimeError {
	return New(ExitGeneralError, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var runtimeErr *RuntimeError
	if errors.As(err, &runtimeErr) {
		return runtimeErr.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
