package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryResolution Category = "resolution"
	CategoryData       Category = "data"
	CategoryRoute      Category = "route"
	CategoryManifest   Category = "manifest"
	CategoryMiddleware Category = "middleware"
	CategoryNavigation Category = "navigation"
	CategoryCLI        Category = "cli"
)

// NavError is a structured error carrying a code, the route it happened on,
// a fix suggestion and a documentation link.
type NavError struct {
	// Code is a unique error identifier (e.g., "N001").
	Code string

	// Category is the error type (config, resolution, data, ...).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Route is the full path of the navigation that failed, if any.
	Route string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *NavError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *NavError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a NavError with the same code.
func (e *NavError) Is(target error) bool {
	t, ok := target.(*NavError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithRoute records the navigation the error belongs to.
func (e *NavError) WithRoute(route string) *NavError {
	e.Route = route
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *NavError) WithSuggestion(s string) *NavError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *NavError) WithDetail(d string) *NavError {
	e.Detail = d
	return e
}

// WithDetailf is WithDetail with formatting.
func (e *NavError) WithDetailf(format string, args ...any) *NavError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *NavError) Wrap(err error) *NavError {
	e.Wrapped = err
	return e
}

// New creates a NavError from a registered error code.
func New(code string) *NavError {
	template, ok := registry[code]
	if !ok {
		return &NavError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &NavError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates a new NavError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *NavError {
	return &NavError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a NavError.
// Errors that already are NavErrors are returned as is.
func FromError(err error, code string) *NavError {
	if err == nil {
		return nil
	}
	var ne *NavError
	if stderrors.As(err, &ne) {
		return ne
	}
	return New(code).Wrap(err)
}

// IsCategory reports whether err (or anything it wraps) is a NavError of
// the given category.
func IsCategory(err error, category Category) bool {
	var ne *NavError
	if !stderrors.As(err, &ne) {
		return false
	}
	return ne.Category == category
}

// CodeOf returns the code of the first NavError in err's chain.
func CodeOf(err error) string {
	var ne *NavError
	if !stderrors.As(err, &ne) {
		return ""
	}
	return ne.Code
}
