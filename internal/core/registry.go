package core

import (
	"errors"
	"slices"
	"sync"
)

// Space tracks the injections made during one test so they can be reset
// together.
type Space struct {
	mu         sync.Mutex
	injections []*DoubleInjection
}

// GetOrCreateSpace returns the Space for the given test, creating one if needed.
// Multiple calls with the same TestReporter return the same Space.
//
// If the TestReporter supports Cleanup (like *testing.T), every injection in
// the space is reset when the test completes, and the space is removed from
// the registry.
func GetOrCreateSpace(t TestReporter) *Space {
	registryMu.Lock()
	defer registryMu.Unlock()

	if space, ok := registry[t]; ok {
		return space
	}

	space := &Space{}
	registry[t] = space

	if cr, ok := t.(cleanupRegistrar); ok {
		cr.Cleanup(func() {
			registryMu.Lock()
			delete(registry, t)
			registryMu.Unlock()

			err := space.Reset()
			if err != nil {
				t.Fatalf("resetting injections at cleanup: %v", err)
			}
		})
	}

	return space
}

// Proxy binds fn as name on subject in ReplaceWithProxy mode and tracks the
// injection in t's space. A bind failure fails the test.
func Proxy[T any](t TestReporter, subject *T, name string, fn Method, opts ...Option) *DoubleInjection {
	t.Helper()

	return bindTracked(t, subject, name, ReplaceWithProxy, fn, opts)
}

// ResetDouble resets the injection bound to name on subject in t's space.
// If no Space exists for t, or the pair is not bound, ResetDouble does nothing.
func ResetDouble(t TestReporter, subject any, name string) error {
	registryMu.Lock()

	space, ok := registry[t]

	registryMu.Unlock()

	if !ok {
		return nil
	}

	return space.ResetDouble(subject, name)
}

// Stub binds fn as name on subject in Replace mode and tracks the injection
// in t's space. A bind failure fails the test.
func Stub[T any](t TestReporter, subject *T, name string, fn Method, opts ...Option) *DoubleInjection {
	t.Helper()

	return bindTracked(t, subject, name, Replace, fn, opts)
}

// Injections returns the injections currently tracked, oldest first.
func (s *Space) Injections() []*DoubleInjection {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.injections)
}

// Reset resets every tracked injection, newest first, and forgets them.
// Injections that were already reset directly, or whose subject has been
// collected, have nothing left to restore and are dropped.
func (s *Space) Reset() error {
	s.mu.Lock()
	injections := s.injections
	s.injections = nil
	s.mu.Unlock()

	var errs []error

	for _, injection := range slices.Backward(injections) {
		if injection.State() == StateReset {
			continue
		}

		err := injection.Reset()
		if err != nil && !errors.Is(err, ErrDetachedSubject) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ResetDouble resets the tracked injection bound to name on subject.
func (s *Space) ResetDouble(subject any, name string) error {
	name = NormalizeMethodName(name)

	s.mu.Lock()

	index := slices.IndexFunc(s.injections, func(injection *DoubleInjection) bool {
		target, ok := injection.Subject()

		return ok && any(target) == subject && injection.name == name
	})
	if index < 0 {
		s.mu.Unlock()

		return nil
	}

	injection := s.injections[index]
	s.injections = slices.Delete(s.injections, index, index+1)
	s.mu.Unlock()

	return injection.Reset()
}

// Track adds injection to the space. Tracking the same injection twice is a no-op.
func (s *Space) Track(injection *DoubleInjection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.injections, injection) {
		return
	}

	s.injections = append(s.injections, injection)
}

// TestReporter is the minimal interface impinject needs from test frameworks.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Package-level registry is intentional for test coordination
	registry = make(map[TestReporter]*Space)
	//nolint:gochecknoglobals // Mutex for registry
	registryMu sync.Mutex
)

// cleanupRegistrar is the interface needed for registering cleanup functions.
// This is satisfied by *testing.T and *testing.B.
type cleanupRegistrar interface {
	Cleanup(cleanupFunc func())
}

func bindTracked[T any](
	t TestReporter,
	subject *T,
	name string,
	mode Mode,
	fn Method,
	opts []Option,
) *DoubleInjection {
	t.Helper()

	injection, err := Bind(subject, name, mode, fn, opts...)
	if err != nil {
		t.Fatalf("%v", err)

		return nil
	}

	GetOrCreateSpace(t).Track(injection)

	return injection
}
