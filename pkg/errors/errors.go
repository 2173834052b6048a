package errors

import (
	"fmt"
	"strings"
)

// ParseError represents a metadata parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures metadata validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PreflightError indicates a prior migration working directory already exists.
// It is recoverable: the user resolves it with apply or abandon.
type PreflightError struct {
	WorkingDir string
}

// NewPreflightError constructs a PreflightError.
func NewPreflightError(workingDir string) error {
	return &PreflightError{WorkingDir: workingDir}
}

func (e *PreflightError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("a migration is already in progress in %s; run `uplift apply` to accept it or `uplift abandon` to discard it", e.WorkingDir)
}

// UnsupportedProjectError indicates the project is not an app scaffold.
type UnsupportedProjectError struct {
	ProjectType string
}

// NewUnsupportedProjectError constructs an UnsupportedProjectError.
func NewUnsupportedProjectError(projectType string) error {
	return &UnsupportedProjectError{ProjectType: projectType}
}

func (e *UnsupportedProjectError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("migration is only supported for app projects, found project type %q", e.ProjectType)
}

// RevisionUnavailableError reports that a toolkit revision could not be
// materialized after exhausting the fallback chain.
type RevisionUnavailableError struct {
	Revision  string
	Attempted []string
	Err       error
}

// NewRevisionUnavailableError constructs a RevisionUnavailableError.
func NewRevisionUnavailableError(revision string, attempted []string, err error) error {
	return &RevisionUnavailableError{Revision: revision, Attempted: attempted, Err: err}
}

func (e *RevisionUnavailableError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Attempted) > 0 {
		return fmt.Sprintf("toolkit revision %s is unavailable (tried %s): %v", e.Revision, strings.Join(e.Attempted, ", "), e.Err)
	}
	return fmt.Sprintf("toolkit revision %s is unavailable: %v", e.Revision, e.Err)
}

// Unwrap exposes the underlying error.
func (e *RevisionUnavailableError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ProcessError represents a subprocess that could not run or exited unexpectedly.
type ProcessError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

// NewProcessError constructs a ProcessError.
func NewProcessError(command string, exitCode int, stderr string, err error) error {
	return &ProcessError{Command: command, ExitCode: exitCode, Stderr: stderr, Err: err}
}

func (e *ProcessError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stderr != "" {
		return fmt.Sprintf("process error: %s exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("process error: %s: %v", e.Command, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ProcessError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
