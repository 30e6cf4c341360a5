package core

import (
	"errors"
	"fmt"
)

// Exported variables.
var (
	// ErrAlreadyReset is returned when an injection is reset, or called, after it was reset.
	ErrAlreadyReset = errors.New("injection already reset")
	// ErrDetachedSubject is returned when the subject of an injection is no longer reachable.
	ErrDetachedSubject = errors.New("subject is no longer reachable")
	// ErrInvalidMethodName is returned for method names that normalize to nothing.
	ErrInvalidMethodName = errors.New("invalid method name")
	// ErrNameCollision is returned when the reserved original slot name is already taken.
	ErrNameCollision = errors.New("reserved name already in use")
	// ErrUnsupportedTarget is returned when the subject cannot have methods installed on it.
	ErrUnsupportedTarget = errors.New("subject does not support method injection")
)

// InjectionError describes a failure to bind, invoke, or reset an injection.
type InjectionError struct {
	Phase   Phase
	Subject string
	Method  string
	Err     error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("%s %s on %s: %v", e.Phase, e.Method, e.Subject, e.Err)
}

func (e *InjectionError) Unwrap() error {
	return e.Err
}

// Phase names the operation an InjectionError came from.
type Phase string

// Phases.
const (
	PhaseBind   Phase = "bind"
	PhaseInvoke Phase = "invoke"
	PhaseReset  Phase = "reset"
)

func newInjectionError(phase Phase, subject, method string, err error) *InjectionError {
	return &InjectionError{Phase: phase, Subject: subject, Method: method, Err: err}
}
