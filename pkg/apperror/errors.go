// Package apperror provides a structured way to handle application errors
// with specific codes, severity levels, and additional details. It also
// maps error codes to process exit codes for the command-line front end.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Graph construction
	CodeInvalidGraph      ErrorCode = "INVALID_GRAPH"
	CodeEmptyGraph        ErrorCode = "EMPTY_GRAPH"
	CodeInvalidVertex     ErrorCode = "INVALID_VERTEX"
	CodeNegativeWeight    ErrorCode = "NEGATIVE_WEIGHT"
	CodeDuplicateNode     ErrorCode = "DUPLICATE_NODE"
	CodeResourceExhausted ErrorCode = "RESOURCE_EXHAUSTED"

	// Priority queue
	CodeEmptyHeap       ErrorCode = "EMPTY_HEAP"
	CodeKeyNotDecreased ErrorCode = "KEY_NOT_DECREASED"

	// Algorithms
	CodeInvalidSource  ErrorCode = "INVALID_SOURCE"
	CodeAlgorithmError ErrorCode = "ALGORITHM_ERROR"
	CodeTimeout        ErrorCode = "TIMEOUT"
	CodeCancelled      ErrorCode = "CANCELLED"

	// Harness
	CodeInvalidScenario ErrorCode = "INVALID_SCENARIO"
	CodeStorageError    ErrorCode = "STORAGE_ERROR"
	CodeReportError     ErrorCode = "REPORT_ERROR"
	CodeInvalidConfig   ErrorCode = "INVALID_CONFIG"

	// General
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeNilInput        ErrorCode = "NIL_INPUT"
	CodeUnimplemented   ErrorCode = "UNIMPLEMENTED"
)

// Process exit codes returned by the CLI.
const (
	ExitOK          = 0
	ExitInternal    = 1
	ExitUsage       = 2
	ExitInput       = 3
	ExitNotFound    = 4
	ExitExhausted   = 5
	ExitInterrupted = 6
	ExitStorage     = 7
)

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityWarning indicates a non-critical issue that can be ignored or automatically resolved.
	SeverityWarning Severity = iota
	// SeverityError indicates a standard error that requires attention.
	SeverityError
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Error is a custom error type that includes an ErrorCode, message,
// an optional field, additional details, an underlying cause, and a severity level.
type Error struct {
	Code     ErrorCode      // Code is a unique identifier for the type of error.
	Message  string         // Message is a human-readable description of the error.
	Field    string         // Field indicates which input field caused the error, if applicable.
	Details  map[string]any // Details provides additional structured information about the error.
	Cause    error          // Cause is the underlying error that triggered this application error.
	Severity Severity       // Severity indicates the criticality level of the error.
}

// Error implements the error interface, returning a string representation of the error.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Field != "" {
		fmt.Fprintf(&b, " (field: %s)", e.Field)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the wrapped error, allowing for error chain introspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode maps the error code to a process exit code.
func (e *Error) ExitCode() int {
	switch e.Code {
	case CodeInvalidArgument, CodeInvalidConfig, CodeInvalidScenario, CodeNilInput:
		return ExitUsage

	case CodeInvalidGraph, CodeEmptyGraph, CodeInvalidVertex, CodeNegativeWeight,
		CodeDuplicateNode, CodeInvalidSource:
		return ExitInput

	case CodeNotFound:
		return ExitNotFound

	case CodeResourceExhausted:
		return ExitExhausted

	case CodeTimeout, CodeCancelled:
		return ExitInterrupted

	case CodeStorageError, CodeReportError:
		return ExitStorage

	default:
		return ExitInternal
	}
}

// New creates a new application error with the given code and message.
// The default severity is SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithField creates a new application error with the given code, message, and field.
// The default severity is SeverityError.
func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Field:    field,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// NewWarning creates a new application error with SeverityWarning.
func NewWarning(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityWarning,
	}
}

// Wrap creates a new application error that wraps an existing error,
// providing additional context with a code and message.
// The default severity is SeverityError.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Cause:    cause,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// WithDetails adds a key-value pair to the error's details map and returns the modified error.
func (e *Error) WithDetails(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error and returns the modified error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Is checks if the given error, or any application error it wraps, carries
// a matching ErrorCode.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *Error
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// Code extracts the ErrorCode from an error. If the error is not an *Error,
// it returns CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ExitCode returns the process exit code for err. A nil error maps to ExitOK,
// a foreign error to ExitInternal.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.ExitCode()
	}
	return ExitInternal
}

// FromContext converts a context error into CodeCancelled or CodeTimeout.
// Any other error is wrapped as CodeInternal.
func FromContext(err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, CodeTimeout, "operation timed out")
	case errors.Is(err, context.Canceled):
		return Wrap(err, CodeCancelled, "operation cancelled")
	default:
		return Wrap(err, CodeInternal, "unexpected context error")
	}
}

// ValidationErrors is a collection of application errors and warnings,
// typically used for aggregating results of multiple validation checks.
type ValidationErrors struct {
	Errors   []*Error // Errors contains all collected errors (SeverityError).
	Warnings []*Error // Warnings contains all collected warnings (SeverityWarning).
}

// NewValidationErrors creates and returns a new empty ValidationErrors collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors:   make([]*Error, 0),
		Warnings: make([]*Error, 0),
	}
}

// AddWarning creates and adds a new application error with SeverityWarning.
func (v *ValidationErrors) AddWarning(code ErrorCode, message string) {
	v.Warnings = append(v.Warnings, NewWarning(code, message))
}

// AddErrorWithField creates and adds a new application error with a specific field.
func (v *ValidationErrors) AddErrorWithField(code ErrorCode, message, field string) {
	v.Errors = append(v.Errors, NewWithField(code, message, field))
}

// HasErrors returns true if the collection contains any errors (non-warning severity).
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// HasWarnings returns true if the collection contains any warnings.
func (v *ValidationErrors) HasWarnings() bool {
	return len(v.Warnings) > 0
}

// IsValid returns true if the collection contains no errors (warnings do not affect validity).
func (v *ValidationErrors) IsValid() bool {
	return !v.HasErrors()
}

// Err folds the collected errors into a single *Error carrying the first
// error's code, or nil when the collection is valid.
func (v *ValidationErrors) Err() error {
	if v.IsValid() {
		return nil
	}
	first := v.Errors[0]
	if len(v.Errors) == 1 {
		return first
	}
	return New(first.Code, strings.Join(v.ErrorMessages(), "; ")).
		WithDetails("error_count", len(v.Errors))
}

// ErrorMessages returns a slice of string messages for all collected errors.
func (v *ValidationErrors) ErrorMessages() []string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Error()
	}
	return messages
}

// WarningMessages returns a slice of string messages for all collected warnings.
func (v *ValidationErrors) WarningMessages() []string {
	messages := make([]string, len(v.Warnings))
	for i, warn := range v.Warnings {
		messages[i] = warn.Message
	}
	return messages
}
