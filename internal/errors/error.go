package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/navcore/pkg/router"
	"github.com/vango-dev/navcore/pkg/view"
)

// Category represents the type of error.
type Category string

const (
	CategoryRoute    Category = "route"
	CategoryView     Category = "view"
	CategoryManifest Category = "manifest"
	CategoryConfig   Category = "config"
	CategoryServer   Category = "server"
	CategoryCLI      Category = "cli"
)

// NavError is a structured startup or CLI error with a code, an
// explanation and a fix suggestion.
type NavError struct {
	// Code is a unique error identifier (e.g., "N001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Subject names what the error is about: a manifest file, a config
	// key, a route pattern.
	Subject string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *NavError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Subject != "" {
		msg += " (" + e.Subject + ")"
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

// WithSubject records what the error is about.
func (e *NavError) WithSubject(s string) *NavError {
	e.Subject = s
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
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new NavError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *NavError {
	return &NavError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in a NavError. A NavError already in the chain is
// returned as is; otherwise the code is picked from the error's kind,
// falling back to code.
func FromError(err error, code string) *NavError {
	if err == nil {
		return nil
	}
	var ne *NavError
	if stderrors.As(err, &ne) {
		return ne
	}
	return New(Classify(err, code)).Wrap(err)
}

// Classify maps well-known routing errors to their codes.
func Classify(err error, fallback string) string {
	switch {
	case stderrors.Is(err, router.ErrMalformedPattern), stderrors.Is(err, router.ErrMissingView):
		return CodeMalformedPattern
	case stderrors.Is(err, router.ErrDuplicateName):
		return CodeDuplicateName
	case stderrors.Is(err, view.ErrUnknownView):
		return CodeMissingHandler
	default:
		return fallback
	}
}
