// Package errors provides structured error types and exit codes for testimport.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess      = 0 // Success
	ExitRuntimeError = 1 // Runtime error (I/O failure, unexpected state, etc.)
	ExitConfigError  = 2 // Configuration error (invalid config, bad pattern, etc.)
	ExitReportError  = 3 // Report error (malformed report file, unreleased handle)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
)

// ImportError is the base error type for testimport.
type ImportError struct {
	Kind    ErrorKind
	Message string
	Format  string // Report format if applicable
	Pattern string // Report pattern if applicable
	Cause   error  // Underlying error
}

func (e *ImportError) Error() string {
	if e.Format != "" && e.Pattern != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Format, e.Pattern, e.Message)
	}
	if e.Format != "" {
		return fmt.Sprintf("[%s] %s", e.Format, e.Message)
	}
	return e.Message
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *ImportError) ExitCode() int {
	if e.Kind == KindConfig {
		return ExitConfigError
	}
	return ExitRuntimeError
}

// Config creates a new configuration error.
func Config(message string) *ImportError {
	return &ImportError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *ImportError {
	return Config(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *ImportError {
	return &ImportError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// PatternError creates an error tied to a report format and pattern.
func PatternError(format, pattern, message string) *ImportError {
	return &ImportError{
		Kind:    KindConfig,
		Format:  format,
		Pattern: pattern,
		Message: message,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *ImportError {
	return &ImportError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// ParseError reports a report file that violates its expected schema.
// Path is absolute and Line is 1-based; zero means the position is unknown.
type ParseError struct {
	Message string
	Path    string
	Line    int
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s in %s at line %d", e.Message, e.Path, e.Line)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ReleaseError reports a failure to release the resources backing a report reader.
// It is returned even when parsing itself succeeded.
type ReleaseError struct {
	Path  string
	Cause error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("failed to release %s: %v", e.Path, e.Cause)
}

func (e *ReleaseError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return ExitReportError
	}
	var re *ReleaseError
	if errors.As(err, &re) {
		return ExitReportError
	}
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.ExitCode()
	}
	return ExitRuntimeError
}
