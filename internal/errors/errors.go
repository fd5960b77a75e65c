// Package errors provides a lightweight structured error type (PaniniError)
// for category-based classification across the build pipeline and CLI.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a Panini error for classification.
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Setup-phase errors (data, locales, collections)
	CategorySetup ErrorCategory = "setup"
	CategoryData  ErrorCategory = "data"

	// Rendering errors (contained per page)
	CategoryRender ErrorCategory = "render"

	// Infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryStore      ErrorCategory = "store"
	CategorySink       ErrorCategory = "sink"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// PaniniError is a structured error with category, severity, and context.
type PaniniError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for PaniniError.
type ContextFields map[string]any

// Error implements the error interface.
func (e *PaniniError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *PaniniError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *PaniniError) WithContext(key string, value any) *PaniniError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// IsFatal reports whether the error halts the instance permanently.
func (e *PaniniError) IsFatal() bool {
	return e.Severity == SeverityFatal
}

// New creates a new PaniniError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *PaniniError {
	return &PaniniError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// IsCategory reports whether err is a PaniniError of the given category,
// unwrapping as needed.
func IsCategory(err error, category ErrorCategory) bool {
	var pe *PaniniError
	if stderrors.As(err, &pe) {
		return pe.Category == category
	}
	return false
}

// Wrap creates a new PaniniError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *PaniniError {
	return &PaniniError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}
