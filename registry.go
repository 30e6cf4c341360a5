package impinject

import (
	"github.com/toejough/impinject/internal/core"
)

// Space tracks the injections made during one test so they can be reset together.
type Space = core.Space

// TestReporter is the minimal interface impinject needs from test frameworks.
type TestReporter = core.TestReporter

// GetOrCreateSpace returns the Space for the given test, creating one if needed.
// Multiple calls with the same TestReporter return the same Space.
// When the test completes, every injection in the space is reset.
func GetOrCreateSpace(t TestReporter) *Space {
	return core.GetOrCreateSpace(t)
}

// Proxy binds fn as name on subject, forwarding the original's result to fn,
// and resets it when t completes. A bind failure fails the test.
func Proxy[T any](t TestReporter, subject *T, name string, fn Method, opts ...Option) *DoubleInjection {
	t.Helper()

	return core.Proxy(t, subject, name, fn, opts...)
}

// ResetDouble resets the injection bound to name on subject in t's space.
func ResetDouble(t TestReporter, subject any, name string) error {
	return core.ResetDouble(t, subject, name)
}

// Stub binds fn as name on subject and resets it when t completes.
// A bind failure fails the test.
func Stub[T any](t TestReporter, subject *T, name string, fn Method, opts ...Option) *DoubleInjection {
	t.Helper()

	return core.Stub(t, subject, name, fn, opts...)
}
