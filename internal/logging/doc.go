// Package logging provides logging utilities for forage-runtime.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("starting sandbox", "root", root, "command", command)
//	logging.Warn("watch path skipped", "path", path, "error", err)
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Starting sandbox in %s...", root)
//	logging.UserSuccess("Sandbox ready (pid %d)", pid)
//	logging.UserWarning("Hot reload disabled for %s", path)
//	logging.UserError("Reload failed: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
//
// # Status Indicators
//
// User functions prepend status indicators:
//   - ℹ (info)
//   - ✓ (success)
//   - ⚠ (warning)
//   - ✗ (error)
package logging
