package runtime

import (
	"errors"
	"fmt"
)

// ErrorKind names one of the hard failure categories of evaluation.
type ErrorKind string

const (
	KindVariableNotFound ErrorKind = "VariableNotFound"
	KindTypeError        ErrorKind = "TypeError"
	KindInvalidOperation ErrorKind = "InvalidOperation"
)

var (
	ErrVariableNotFound = errors.New("variable not found")
	ErrTypeError        = errors.New("type error")
	ErrInvalidOperation = errors.New("invalid operation")
)

// Error is a hard evaluation failure. Soft "no value" outcomes are
// NullValue results, never errors.
type Error struct {
	Kind    ErrorKind
	Name    string
	Message string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindVariableNotFound:
		return fmt.Sprintf("%s: '%s'", e.Kind, e.Name)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrVariableNotFound:
		return e.Kind == KindVariableNotFound
	case ErrTypeError:
		return e.Kind == KindTypeError
	case ErrInvalidOperation:
		return e.Kind == KindInvalidOperation
	}
	return false
}

func NewVariableNotFound(name string) error {
	return &Error{Kind: KindVariableNotFound, Name: name, Message: fmt.Sprintf("undefined variable '%s'", name)}
}

func NewTypeError(format string, args ...any) error {
	return &Error{Kind: KindTypeError, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidOperation(format string, args ...any) error {
	return &Error{Kind: KindInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

// ErrorKindOf extracts the evaluation error kind from err, looking through
// wrapping. It returns "" for errors outside the taxonomy, such as failures
// raised by the model engine.
func ErrorKindOf(err error) ErrorKind {
	var evalErr *Error
	if errors.As(err, &evalErr) {
		return evalErr.Kind
	}
	return ""
}
