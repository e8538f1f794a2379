// Package log provides structured logging for firesweep, built on top of the
// standard slog package.
//
// This package extends slog to provide:
//   - Cleaning of engine-originated text (stderr, raw stdout) before it is logged
//   - Configurable log levels with verbose mode support
//   - Consistent text or JSON formatting across the application
//
// # Engine Output Cleaning
//
// The DiagnosticHandler rewrites attribute values whose keys carry captured
// engine output:
//   - ANSI escape sequences (colours, cursor movement) are removed
//   - Newlines and tabs are collapsed to single spaces
//   - Payloads longer than MaxDetailLength bytes are truncated
//
// An engine that prints a full-screen animation to stderr before dying
// therefore produces a single readable log line.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Warn("engine invocation failed",
//	    "size", 20,
//	    "density", 0.45,
//	    "stderr", stderrText, // cleaned and truncated
//	)
//
//	slog.SetDefault(logger)
package log
