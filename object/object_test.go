package object_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	"github.com/toejough/impinject/internal/core"
	"github.com/toejough/impinject/object"
)

// TestSend_DispatchOrder verifies interceptions answer before own methods, and
// own methods before method missing.
func TestSend_DispatchOrder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	obj := object.New(
		object.WithMethod("foobar", object.Returns("own")),
		object.WithMethodMissing(func(*object.Object, string, ...any) (any, error) {
			return "missing", nil
		}),
	)

	g.Expect(obj.Send("other")).To(Equal("missing"))
	g.Expect(obj.Send("foobar")).To(Equal("own"))

	g.Expect(obj.Intercept("foobar", core.Returns("intercepted"))).To(Succeed())
	g.Expect(obj.Send("foobar")).To(Equal("intercepted"))

	g.Expect(obj.Release("foobar")).To(Succeed())
	g.Expect(obj.Send("foobar")).To(Equal("own"))
}

// TestSend_NoMethod verifies the default fallback.
func TestSend_NoMethod(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	obj := object.New(object.WithName("thing"))

	_, err := obj.Send("foobar")
	g.Expect(err).To(MatchError(object.ErrNoMethod))
	g.Expect(err).To(MatchError(`undefined method "foobar" for #<Object thing>`))

	var noMethod *object.NoMethodError
	g.Expect(errors.As(err, &noMethod)).To(BeTrue())
	g.Expect(noMethod.Name).To(Equal("foobar"))
	g.Expect(noMethod.Subject).To(Equal("#<Object thing>"))
}

// TestMethod_ReceivesSelfAndArgs verifies method bodies are bound to their object.
func TestMethod_ReceivesSelfAndArgs(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var receiver *object.Object

	obj := object.New(object.WithMethod("echo", func(self *object.Object, args ...any) (any, error) {
		receiver = self

		return args, nil
	}))

	g.Expect(obj.Send("echo", 1, "two")).To(Equal([]any{1, "two"}))
	g.Expect(receiver).To(BeIdenticalTo(obj))

	method, ok := obj.Method("echo")
	g.Expect(ok).To(BeTrue())
	g.Expect(method.Call(3)).To(Equal([]any{3}))
}

// TestRespondsTo covers the default answer and the hook.
func TestRespondsTo(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	plain := object.New(object.WithMethod("foobar", object.Returns(nil)))
	g.Expect(plain.RespondsTo("foobar")).To(BeTrue())
	g.Expect(plain.RespondsTo("baz")).To(BeFalse())

	g.Expect(plain.Intercept("baz", core.Returns(nil))).To(Succeed())
	g.Expect(plain.RespondsTo("baz")).To(BeTrue())

	hooked := object.New(object.WithRespondsTo(func(self *object.Object, name string) bool {
		return name == "anything" || self.DefaultRespondsTo(name)
	}))
	g.Expect(hooked.RespondsTo("anything")).To(BeTrue())
	g.Expect(hooked.DefaultRespondsTo("anything")).To(BeFalse())
	g.Expect(hooked.RespondsTo("foobar")).To(BeFalse())
}

// TestMethods lists own and intercepted names once each, sorted.
func TestMethods(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	obj := object.New(
		object.WithMethod("zeta", object.Returns(nil)),
		object.WithMethod("alpha", object.Returns(nil)),
	)
	g.Expect(obj.Intercept("alpha", core.Returns(nil))).To(Succeed())
	g.Expect(obj.Intercept("mid", core.Returns(nil))).To(Succeed())

	g.Expect(obj.Methods()).To(Equal([]string{"alpha", "mid", "zeta"}))

	g.Expect(obj.Undefine("zeta")).To(Succeed())
	g.Expect(obj.Methods()).To(Equal([]string{"alpha", "mid"}))
}

// TestMethods_Property proves Methods is the sorted union of own and
// intercepted names.
func TestMethods_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		own := rapid.SliceOf(rapid.StringMatching(`[a-z]{1,4}`)).Draw(rt, "own")
		intercepted := rapid.SliceOf(rapid.StringMatching(`[a-z]{1,4}`)).Draw(rt, "intercepted")

		obj := object.New()
		union := map[string]bool{}

		for _, name := range own {
			_ = obj.Define(name, object.Returns(nil))
			union[name] = true
		}

		for _, name := range intercepted {
			_ = obj.Intercept(name, core.Returns(nil))
			union[name] = true
		}

		names := obj.Methods()
		if len(names) != len(union) {
			rt.Fatalf("expected %d names, got %v", len(union), names)
		}

		for i, name := range names {
			if !union[name] {
				rt.Fatalf("unexpected name %q", name)
			}

			if i > 0 && names[i-1] >= name {
				rt.Fatalf("names not sorted and unique: %v", names)
			}
		}
	})
}

// TestFreeze verifies a frozen object refuses every change.
func TestFreeze(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	obj := object.New(object.WithMethod("foobar", object.Returns("own")))
	g.Expect(obj.Frozen()).To(BeFalse())

	obj.Freeze()
	g.Expect(obj.Frozen()).To(BeTrue())

	g.Expect(obj.Define("baz", object.Returns(nil))).To(MatchError(object.ErrFrozen))
	g.Expect(obj.Undefine("foobar")).To(MatchError(object.ErrFrozen))
	g.Expect(obj.Intercept("foobar", core.Returns(nil))).To(MatchError(object.ErrFrozen))
	g.Expect(obj.Release("foobar")).To(MatchError(object.ErrFrozen))

	g.Expect(obj.Send("foobar")).To(Equal("own"))
	g.Expect(obj.Methods()).To(Equal([]string{"foobar"}))
}

// TestString covers named and anonymous objects.
func TestString(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(object.New().String()).To(Equal("#<Object>"))
	g.Expect(object.New(object.WithName("widget")).String()).To(Equal("#<Object widget>"))
}

// TestMethodMissing_SynthesizesOnce verifies a hook can define the method it
// was asked for, after which the hook is no longer consulted.
func TestMethodMissing_SynthesizesOnce(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	hookCalls := 0
	obj := object.New(object.WithMethodMissing(func(self *object.Object, name string, args ...any) (any, error) {
		hookCalls++

		err := self.Define(name, object.Returns("synthesized "+name))
		if err != nil {
			return nil, err
		}

		return self.Send(name, args...)
	}))

	g.Expect(obj.Send("foobar")).To(Equal("synthesized foobar"))
	g.Expect(obj.Send("foobar")).To(Equal("synthesized foobar"))
	g.Expect(hookCalls).To(Equal(1))

	_, ok := obj.Method("foobar")
	g.Expect(ok).To(BeTrue())
}
