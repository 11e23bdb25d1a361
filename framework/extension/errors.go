package extension

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every lifecycle guard error.
//
//	if errors.Is(err, extension.ErrConfiguration) { ... }
var ErrConfiguration = errors.New("extension configuration error")

// InvalidCloneError is returned when Clone is called on a clone.
type InvalidCloneError struct {
	Type string
}

func (e *InvalidCloneError) Error() string {
	return fmt.Sprintf("cloned extensions cannot be cloned: %s", e.Type)
}

func (e *InvalidCloneError) Unwrap() error { return ErrConfiguration }

// MissingInitError is returned when a unit's constructor never called
// Extension.Init. It surfaces the first time the unit is cloned.
type MissingInitError struct {
	Type string
}

func (e *MissingInitError) Error() string {
	return fmt.Sprintf("%s was never initialised: did you forget to call Extension.Init() in its constructor?", e.Type)
}

func (e *MissingInitError) Unwrap() error { return ErrConfiguration }

// BindReason says why a Bind call was rejected.
type BindReason int

const (
	// NotAClone: only clones may be bound.
	NotAClone BindReason = iota
	// AlreadyBound: a clone is bound exactly once.
	AlreadyBound
	// NilContainer: a clone must be bound to a container.
	NilContainer
)

// InvalidBindError is returned when Bind is called on a declaration, on a
// clone that is already bound, or with a nil container.
type InvalidBindError struct {
	Type   string
	Name   string
	Reason BindReason
}

func (e *InvalidBindError) Error() string {
	switch e.Reason {
	case AlreadyBound:
		return fmt.Sprintf("extension %s is already bound (binding as %q)", e.Type, e.Name)
	case NilContainer:
		return fmt.Sprintf("extension %s cannot be bound as %q without a container", e.Type, e.Name)
	default:
		return fmt.Sprintf("only cloned extensions can be bound: %s (binding as %q)", e.Type, e.Name)
	}
}

func (e *InvalidBindError) Unwrap() error { return ErrConfiguration }

// InvalidStateError is returned when runtime state is written to a
// declaration.
type InvalidStateError struct {
	Key string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("declarations carry no runtime state: cannot store %q", e.Key)
}

func (e *InvalidStateError) Unwrap() error { return ErrConfiguration }

// InvalidUnitError is returned when a Unit cannot be cloned: it is nil, not
// a pointer to a struct, embeds its base by pointer, or keeps a child unit
// in an unexported field.
type InvalidUnitError struct {
	Type   string
	Detail string
}

func (e *InvalidUnitError) Error() string {
	return fmt.Sprintf("invalid capability unit %s: %s", e.Type, e.Detail)
}

func (e *InvalidUnitError) Unwrap() error { return ErrConfiguration }

// IsConfigurationError reports whether err (or anything it wraps) is a
// lifecycle guard error.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
