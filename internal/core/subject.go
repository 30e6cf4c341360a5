// Package core provides the internal implementation of impinject's method
// injection: classifying a subject, binding a substitute, dispatching calls to
// it, and resetting the subject afterwards.
package core

// Method is a callable method body bound to its receiver.
type Method interface {
	Call(args ...any) (any, error)
}

// MethodFunc adapts an ordinary function to the Method interface.
type MethodFunc func(args ...any) (any, error)

// Call runs f.
func (f MethodFunc) Call(args ...any) (any, error) {
	return f(args...)
}

// Subject is the capability set an object needs to accept injections.
//
// Dispatch on a subject must consult the interception layer (Intercept,
// Intercepted, Release) before its own methods, and fall back to
// MethodMissing when neither answers.
type Subject interface {
	// RespondsTo is the subject's own notion of whether it answers name.
	// Subjects may override it freely.
	RespondsTo(name string) bool
	// Method returns the subject's own, already materialized method for name.
	Method(name string) (Method, bool)
	// MethodMissing runs the subject's fallback for a name it has no method for.
	MethodMissing(name string, args ...any) (any, error)

	Intercepted(name string) (Method, bool)
	Intercept(name string, method Method) error
	Release(name string) error
}
