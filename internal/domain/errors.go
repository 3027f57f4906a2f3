package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures for the boundary layer. Routing and
// generation errors wrap the provider error unchanged; the workflow records
// the kind on its state before re-raising.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation_failure"
	KindRouting     ErrorKind = "routing_failure"
	KindGeneration  ErrorKind = "generation_failure"
	KindPersistence ErrorKind = "persistence_failure"
	KindNotFound    ErrorKind = "not_found"
	KindCancelled   ErrorKind = "cancelled"
)

// Error tags an underlying error with an ErrorKind.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with the given kind. A nil err returns nil.
func E(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Errorf wraps a formatted error with the given kind.
func Errorf(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of err, or an empty kind for untagged errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ErrNotFound is the base error for missing conversations and agent types.
var ErrNotFound = errors.New("not found")
