// Package errors provides typed errors with exit codes for forage-runtime.
//
// # Error Types
//
// RuntimeError is the base error type that wraps an error with an exit code:
//
//	type RuntimeError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
//	ExitSuccess       = 0  // Success
//	ExitGeneralError  = 1  // General/unknown errors
//	ExitUnavailable   = 2  // Sandbox not ready, or start/reload failed
//	ExitConfigError   = 3  // Invalid runtime options
//	ExitWorkspace     = 4  // Workspace root missing or unreadable
//	ExitProcessFailed = 5  // Process manager operation failed
//
// # Sandbox Unavailable
//
// Every error built with Unavailable or NotReady matches ErrUnavailable:
//
//	if errors.Is(err, errors.ErrUnavailable) {
//	    // retry after the sandbox becomes ready
//	}
//
// The original cause stays reachable through Unwrap.
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
