package errors

import (
	"fmt"
)

// WordexError is the structured error type for wordex.
// It carries the code, category and severity that the pipeline's
// fatal-vs-skippable policy is built on.
type WordexError struct {
	// Code is the unique error code (e.g., "ERR_203_DOC_PERMISSION").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Corpus, Merge, ...).
	Category Category

	// Severity decides whether the error aborts the run or skips a document.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *WordexError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *WordexError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with WordexError.
func (e *WordexError) Is(target error) bool {
	if t, ok := target.(*WordexError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *WordexError) WithDetail(key, value string) *WordexError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Escalate returns a copy of the error with fatal severity.
// Used when configuration reclassifies a skippable document error.
func (e *WordexError) Escalate() *WordexError {
	clone := *e
	clone.Severity = SeverityFatal
	return &clone
}

// New creates a new WordexError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *WordexError {
	return &WordexError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a WordexError from an existing error.
// The error's message becomes the WordexError message.
func Wrap(code string, err error) *WordexError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// IsSkippable reports whether an error excludes a single document
// rather than aborting the run.
func IsSkippable(err error) bool {
	if err == nil {
		return false
	}
	if we, ok := err.(*WordexError); ok {
		return we.Severity == SeveritySkip
	}
	return false
}

// IsFatal reports whether an error must abort the run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if we, ok := err.(*WordexError); ok {
		return we.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a WordexError.
// Returns empty string if not a WordexError.
func GetCode(err error) string {
	if we, ok := err.(*WordexError); ok {
		return we.Code
	}
	return ""
}

// GetCategory extracts the category from a WordexError.
// Returns empty string if not a WordexError.
func GetCategory(err error) Category {
	if we, ok := err.(*WordexError); ok {
		return we.Category
	}
	return ""
}
