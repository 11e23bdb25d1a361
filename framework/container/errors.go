package container

import (
	"fmt"

	"github.com/juju/errors"
)

// ErrNotRunning is returned by Invoke outside Start/Stop.
var ErrNotRunning = errors.New("container is not running")

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("container already started")

// MethodNotFoundError is returned when a service has no such method.
type MethodNotFoundError struct {
	Service string
	Method  string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("service %s has no method %q", e.Service, e.Method)
}

// InjectionError wraps a failure to acquire an injected value.
type InjectionError struct {
	Name string
	Err  error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("acquiring injection %q failed: %v", e.Name, e.Err)
}

func (e *InjectionError) Unwrap() error {
	return e.Err
}

// LifecycleError wraps a unit's Setup, Start or Stop failure.
type LifecycleError struct {
	Phase string
	Name  string
	Err   error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s of %q failed: %v", e.Phase, e.Name, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}
