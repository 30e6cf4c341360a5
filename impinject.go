// Package impinject provides method injection for test doubles.
// It binds a substitute to one method name on a live object, optionally
// forwarding to the object's original method, and resets the object to its
// pre-injection state afterwards.
//
// This is the public API entry point. Implementation lives in internal/core.
package impinject

import (
	"github.com/toejough/impinject/internal/core"
)

// Exported variables.
var (
	// ErrAlreadyReset is returned when an injection is reset, or called, after it was reset.
	ErrAlreadyReset = core.ErrAlreadyReset
	// ErrDetachedSubject is returned when the subject of an injection is no longer reachable.
	ErrDetachedSubject = core.ErrDetachedSubject
	// ErrInvalidMethodName is returned for method names that normalize to nothing.
	ErrInvalidMethodName = core.ErrInvalidMethodName
	// ErrNameCollision is returned when the reserved original slot name is already taken.
	ErrNameCollision = core.ErrNameCollision
	// ErrUnsupportedTarget is returned when the subject cannot have methods installed on it.
	ErrUnsupportedTarget = core.ErrUnsupportedTarget
)

// Modes.
const (
	Replace          = core.Replace
	ReplaceWithProxy = core.ReplaceWithProxy
)

// Responder values.
const (
	Absent      = core.Absent
	Deferred    = core.Deferred
	Implemented = core.Implemented
)

// States.
const (
	StateBound    = core.StateBound
	StateCaptured = core.StateCaptured
	StateReset    = core.StateReset
)

// Phases.
const (
	PhaseBind   = core.PhaseBind
	PhaseInvoke = core.PhaseInvoke
	PhaseReset  = core.PhaseReset
)

// DefaultPrefix is prepended to a method name to form the reserved name the
// captured original is exposed under.
const DefaultPrefix = core.DefaultPrefix

// Types re-exported from internal/core.

// DoubleInjection is a substitute bound to one method name on one subject.
type DoubleInjection = core.DoubleInjection

// InjectionError describes a failure to bind, invoke, or reset an injection.
type InjectionError = core.InjectionError

// Method is a callable method body bound to its receiver.
type Method = core.Method

// MethodFunc adapts an ordinary function to the Method interface.
type MethodFunc = core.MethodFunc

// Mode selects whether an injection forwards to the original.
type Mode = core.Mode

// Option configures Bind.
type Option = core.Option

// Phase names the operation an InjectionError came from.
type Phase = core.Phase

// Responder classifies how a subject answers a method name before injection.
type Responder = core.Responder

// State is the lifecycle state of an injection.
type State = core.State

// Subject is the capability set an object needs to accept injections.
type Subject = core.Subject

// Functions re-exported from internal/core.

// Bind installs substitute as name on subject and returns the injection that owns it.
func Bind[T any](subject *T, name string, mode Mode, substitute Method, opts ...Option) (*DoubleInjection, error) {
	return core.Bind(subject, name, mode, substitute, opts...)
}

// Inspect classifies subject's current answer for name.
func Inspect(subject Subject, name string) Responder {
	return core.Inspect(subject, name)
}

// NormalizeMethodName returns the canonical form of a method name.
func NormalizeMethodName(name string) string {
	return core.NormalizeMethodName(name)
}

// ReservedName returns the name a captured original for name is exposed under.
func ReservedName(prefix, name string) string {
	return core.ReservedName(prefix, name)
}

// Reset undoes injection.
func Reset(injection *DoubleInjection) error {
	return injection.Reset()
}

// Returns is a substitute that ignores its arguments and returns value.
func Returns(value any) Method {
	return core.Returns(value)
}

// WithPrefix sets the prefix of the reserved name the original is exposed under.
func WithPrefix(prefix string) Option {
	return core.WithPrefix(prefix)
}
