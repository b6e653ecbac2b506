package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMessage is matched by every decode, encode and validation failure.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrNotSupported is returned when an optional attribute is accessed on a
	// message type that does not carry it.
	ErrNotSupported = errors.New("feature not supported")

	// ErrNoResolver is returned when an inline message is read from a buffer
	// with no resolver attached. It matches ErrInvalidMessage.
	ErrNoResolver = fmt.Errorf("%w: buffer has no resolver for inline messages", ErrInvalidMessage)
)

// InvalidMessageError describes which field of which message failed which check.
type InvalidMessageError struct {
	Type     string // Message (or codec) type name
	Field    string // Field name
	Kind     Kind   // Comparison that failed
	Actual   any    // Value found
	Expected any    // Bound or value required
}

// Error renders "<Type>.<Field> : invalid <kind> value (<actual> <op> <expected>)".
func (e *InvalidMessageError) Error() string {
	return fmt.Sprintf("%s.%s : invalid %s value (%v %s %v)",
		e.Type, e.Field, e.Kind.Description(), e.Actual, e.Kind.Operator(), e.Expected)
}

// Is reports whether target is ErrInvalidMessage.
func (e *InvalidMessageError) Is(target error) bool {
	return target == ErrInvalidMessage
}

// NewInvalidMessage builds an InvalidMessageError.
func NewInvalidMessage(typeName, field string, kind Kind, actual, expected any) *InvalidMessageError {
	return &InvalidMessageError{
		Type:     typeName,
		Field:    field,
		Kind:     kind,
		Actual:   actual,
		Expected: expected,
	}
}

func notSupported(m Message, feature string) error {
	return fmt.Errorf("%s: %s: %w", m.Name(), feature, ErrNotSupported)
}
