// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
)

// ErrorCategory classifies command errors for the exit status.
type ErrorCategory string

const (
	// CategoryValidation covers bad flags, arguments, config, and
	// scenario files. Exit status 2.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound covers files that do not exist. Exit status 2.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryInternal covers failures the caller cannot fix by
	// changing input, such as a failed write to stdout. Exit status 1.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized command error. It wraps the underlying
// error so errors.Is and errors.As see through it.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// Validation creates a validation error.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// ExitError exits with Code without printing anything further. The
// command has already written its own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// exitStatus maps the error returned by run to a process exit status,
// printing it to stderr unless it is an ExitError.
func exitStatus(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	if coder, ok := err.(interface{ ExitCode() int }); ok {
		return coder.ExitCode()
	}
	fmt.Fprintf(stderr, "error: %v\n", err)

	var toolError *ToolError
	if errors.As(err, &toolError) && toolError.Category != CategoryInternal {
		return 2
	}
	return 1
}
