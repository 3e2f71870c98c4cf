package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	// ErrConfig covers invalid configuration: non-positive intervals,
	// malformed YAML, nonsensical machine capacity.
	ErrConfig = "CONFIG"
	// ErrCollab covers an unavailable collaborator: nvidia-smi, scontrol, or
	// docker missing or failing to execute.
	ErrCollab = "COLLAB"
	// ErrParse covers unexpected output shape from an external command.
	ErrParse = "PARSE"
	// ErrSSH covers connection failures to remote machines.
	ErrSSH = "SSH"
	// ErrExec covers commands that ran but exited non-zero.
	ErrExec = "EXEC"
)

// Error represents a structured error with code, message, suggestion, and
// optional cause. Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrCollab code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrCollab,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface with formatted multi-line output.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var dgxErr *Error
	if errors.As(err, &dgxErr) {
		return dgxErr.Code == code
	}
	return false
}

// IsRetryable reports whether an error should be retried on the next poll
// tick rather than aborting the loop. Collaborator, parse, and connection
// failures are transient: the external command may succeed next interval.
func IsRetryable(err error) bool {
	return IsCode(err, ErrCollab) || IsCode(err, ErrParse) ||
		IsCode(err, ErrSSH) || IsCode(err, ErrExec)
}
