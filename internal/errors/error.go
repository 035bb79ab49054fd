package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryApply    Category = "apply"
	CategoryProtocol Category = "protocol"
	CategoryInput    Category = "input"
	CategoryConfig   Category = "config"
	CategoryStorage  Category = "storage"
	CategoryCLI      Category = "cli"
)

// Error is a structured error with a registered code, an optional tree
// location and a suggestion.
type Error struct {
	// Code is a unique error identifier (e.g., "E100").
	Code string

	// Category is the error type (apply, protocol, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Path is the tree path the error refers to, if any.
	Path string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Fatal marks consistency violations that require a full rebuild.
	Fatal bool

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s at %s", msg, e.Path)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches another *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code != "" && t.Code == e.Code
}

// AtPath records the tree path the error refers to.
func (e *Error) AtPath(path fmt.Stringer) *Error {
	e.Path = path.String()
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted explanation to the error.
func (e *Error) WithDetailf(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		Fatal:      template.Fatal,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first *Error in err's chain, or "".
func Code(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsFatal reports whether err is a consistency violation between a live
// tree and the patches applied to it. Such errors must be propagated; the
// live tree can only be recovered by rebuilding it from scratch.
func IsFatal(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Fatal
}

// Is reports whether any error in err's chain carries the given code.
func Is(err error, code string) bool {
	return stderrors.Is(err, &Error{Code: code})
}
