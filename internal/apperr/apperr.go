// Package apperr defines the error kinds raised by the core pipeline.
package apperr

import "fmt"

// Kind identifies one of the core's error categories.
type Kind string

const (
	MalformedInput       Kind = "malformed-input"
	InsufficientSamples  Kind = "insufficient-samples"
	ConfigurationInvalid Kind = "configuration-invalid"
	// IO is never raised by the core; it exists for the CLI's own
	// file read/write failures so callers can share one error shape.
	IO Kind = "io"
)

// Error carries a kind, the offending component, and a human message.
type Error struct {
	Kind      Kind
	Component string
	Message   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Component, e.Message)
}

// New builds an Error for the given component.
func New(kind Kind, component, message string) *Error {
	return &Error{Kind: kind, Component: component, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, component, format string, args ...any) *Error {
	return New(kind, component, fmt.Sprintf(format, args...))
}

// Is reports whether err carries the given kind, so callers can branch
// on category without depending on component names.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
