// Package match provides gomega matchers for asserting on injected subjects.
// This package is designed to be dot-imported alongside gomega:
//
//	import (
//	    . "github.com/onsi/gomega"
//	    . "github.com/toejough/impinject/match"
//	)
//
//	g.Expect(subject).To(RespondTo("foobar"))
//	g.Expect(subject).NotTo(HaveMethod(impinject.ReservedName(impinject.DefaultPrefix, "foobar")))
package match

import (
	"errors"
	"fmt"
	"slices"

	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"

	"github.com/toejough/impinject/object"
)

// errTypeMismatch is a sentinel error for type assertion failures.
var errTypeMismatch = errors.New("type mismatch")

// BeNoMethodError matches errors that report a call to a name the subject
// does not answer.
func BeNoMethodError() types.GomegaMatcher {
	return noMethodMatcher{}
}

// HaveMethod matches subjects whose method list includes name.
// The subject must have a Methods() []string method.
func HaveMethod(name string) types.GomegaMatcher {
	return &methodMatcher{name: name}
}

// RespondTo matches subjects whose own RespondsTo reports true for name.
func RespondTo(name string) types.GomegaMatcher {
	return &respondMatcher{name: name}
}

type methodLister interface {
	Methods() []string
}

type methodMatcher struct {
	name string
}

func (m *methodMatcher) FailureMessage(actual any) string {
	return format.Message(actual, "to have method", m.name)
}

func (m *methodMatcher) Match(actual any) (bool, error) {
	lister, ok := actual.(methodLister)
	if !ok {
		return false, fmt.Errorf("%w: HaveMethod expects a Methods() []string, got %T", errTypeMismatch, actual)
	}

	return slices.Contains(lister.Methods(), m.name), nil
}

func (m *methodMatcher) NegatedFailureMessage(actual any) string {
	return format.Message(actual, "not to have method", m.name)
}

type noMethodMatcher struct{}

func (noMethodMatcher) FailureMessage(actual any) string {
	return format.Message(actual, "to be a no-such-method error")
}

func (noMethodMatcher) Match(actual any) (bool, error) {
	if actual == nil {
		return false, nil
	}

	err, ok := actual.(error)
	if !ok {
		return false, fmt.Errorf("%w: BeNoMethodError expects an error, got %T", errTypeMismatch, actual)
	}

	return errors.Is(err, object.ErrNoMethod), nil
}

func (noMethodMatcher) NegatedFailureMessage(actual any) string {
	return format.Message(actual, "not to be a no-such-method error")
}

type responder interface {
	RespondsTo(name string) bool
}

type respondMatcher struct {
	name string
}

func (m *respondMatcher) FailureMessage(actual any) string {
	return format.Message(actual, "to respond to", m.name)
}

func (m *respondMatcher) Match(actual any) (bool, error) {
	subject, ok := actual.(responder)
	if !ok {
		return false, fmt.Errorf("%w: RespondTo expects a RespondsTo(string) bool, got %T", errTypeMismatch, actual)
	}

	return subject.RespondsTo(m.name), nil
}

func (m *respondMatcher) NegatedFailureMessage(actual any) string {
	return format.Message(actual, "not to respond to", m.name)
}
