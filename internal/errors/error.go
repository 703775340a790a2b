package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryScope    Category = "scope"
	CategoryBinding  Category = "binding"
	CategoryProtocol Category = "protocol"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// FilterError is a structured error with a registered code, a suggestion and
// documentation.
type FilterError struct {
	// Code is a unique error identifier (e.g., "F001").
	Code string

	// Category is the error type (scope, binding, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *FilterError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *FilterError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a FilterError with the same code, so a
// registered sentinel matches every error created from its code.
func (e *FilterError) Is(target error) bool {
	t, ok := target.(*FilterError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *FilterError) WithSuggestion(s string) *FilterError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *FilterError) WithDetail(d string) *FilterError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *FilterError) Wrap(err error) *FilterError {
	e.Wrapped = err
	return e
}

// New creates a FilterError from a registered error code.
func New(code string) *FilterError {
	template, ok := registry[code]
	if !ok {
		return &FilterError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &FilterError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new FilterError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *FilterError {
	return &FilterError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a FilterError.
func FromError(err error, code string) *FilterError {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*FilterError); ok {
		return fe
	}
	return New(code).Wrap(err)
}
