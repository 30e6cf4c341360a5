// Package object provides Object, a dynamic object with a per-instance method
// table that impinject can inject methods into.
//
// An Object answers a call to a name from, in order: its interception layer
// (where injections live), its own methods, and its method-missing hook.
// Hooks let an Object override its own RespondsTo and synthesize methods the
// first time they are asked for:
//
//	lazy := object.New(
//	    object.WithRespondsTo(func(self *object.Object, name string) bool {
//	        return name == "foobar" || self.DefaultRespondsTo(name)
//	    }),
//	    object.WithMethodMissing(func(self *object.Object, name string, args ...any) (any, error) {
//	        if name != "foobar" {
//	            return self.NoMethod(name)
//	        }
//	        _ = self.Define("foobar", object.Returns("original_foobar"))
//	        return self.Send("foobar", args...)
//	    }),
//	)
package object

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/toejough/impinject/internal/core"
)

// Exported variables.
var (
	// ErrFrozen is returned when a frozen Object is asked to change its methods.
	ErrFrozen = errors.New("object is frozen")
	// ErrNoMethod matches every NoMethodError.
	ErrNoMethod = errors.New("no such method")
)

// Func is a method body. self is the Object the method was called on.
type Func func(self *Object, args ...any) (any, error)

// MissingFunc handles calls to names the Object has no method for.
type MissingFunc func(self *Object, name string, args ...any) (any, error)

// NoMethodError reports a call to a name an Object does not answer.
type NoMethodError struct {
	Subject string
	Name    string
}

func (e *NoMethodError) Error() string {
	return fmt.Sprintf("undefined method %q for %s", e.Name, e.Subject)
}

// Is reports whether target is ErrNoMethod.
func (e *NoMethodError) Is(target error) bool {
	return target == ErrNoMethod
}

// Object is a dynamic object. The zero value is not usable; create Objects
// with New.
type Object struct {
	name       string
	respondsTo RespondsToFunc
	missing    MissingFunc

	mu          sync.RWMutex
	methods     map[string]core.Method
	intercepted map[string]core.Method
	frozen      bool
}

// New creates an Object.
func New(opts ...Option) *Object {
	obj := &Object{
		methods:     make(map[string]core.Method),
		intercepted: make(map[string]core.Method),
	}

	for _, opt := range opts {
		opt(obj)
	}

	return obj
}

// DefaultRespondsTo reports whether name is intercepted or is one of the
// Object's own methods, ignoring any RespondsTo hook.
func (o *Object) DefaultRespondsTo(name string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	_, intercepted := o.intercepted[name]
	_, own := o.methods[name]

	return intercepted || own
}

// Define adds or replaces the Object's own method name.
func (o *Object) Define(name string, fn Func) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.frozen {
		return fmt.Errorf("%w: cannot define %s on %s", ErrFrozen, name, o.describe())
	}

	o.methods[name] = boundMethod{self: o, fn: fn}

	return nil
}

// Freeze stops the Object's methods and interception layer from changing.
func (o *Object) Freeze() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.frozen = true
}

// Frozen reports whether Freeze has been called.
func (o *Object) Frozen() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.frozen
}

// Intercept installs method in front of the Object's own method for name.
func (o *Object) Intercept(name string, method core.Method) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.frozen {
		return fmt.Errorf("%w: cannot intercept %s on %s", ErrFrozen, name, o.describe())
	}

	o.intercepted[name] = method

	return nil
}

// Intercepted returns the interception installed for name.
func (o *Object) Intercepted(name string) (core.Method, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	method, ok := o.intercepted[name]

	return method, ok
}

// Method returns the Object's own method for name.
func (o *Object) Method(name string) (core.Method, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	method, ok := o.methods[name]

	return method, ok
}

// MethodMissing runs the method-missing hook, or fails with a NoMethodError
// when there is none.
func (o *Object) MethodMissing(name string, args ...any) (any, error) {
	if o.missing == nil {
		return o.NoMethod(name)
	}

	return o.missing(o, name, args...)
}

// Methods lists every name the Object has a method for, intercepted or own, sorted.
func (o *Object) Methods() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	names := slices.Collect(maps.Keys(o.methods))
	for name := range o.intercepted {
		if _, own := o.methods[name]; !own {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// NoMethod returns a NoMethodError for name. Method-missing hooks return it
// for names they decline.
func (o *Object) NoMethod(name string) (any, error) {
	return nil, &NoMethodError{Subject: o.String(), Name: name}
}

// Release removes the interception for name, if there is one.
func (o *Object) Release(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.frozen {
		return fmt.Errorf("%w: cannot release %s on %s", ErrFrozen, name, o.describe())
	}

	delete(o.intercepted, name)

	return nil
}

// RespondsTo reports whether the Object answers name. A RespondsTo hook, if
// set, decides; otherwise DefaultRespondsTo does.
func (o *Object) RespondsTo(name string) bool {
	if o.respondsTo != nil {
		return o.respondsTo(o, name)
	}

	return o.DefaultRespondsTo(name)
}

// Send calls name on the Object.
func (o *Object) Send(name string, args ...any) (any, error) {
	o.mu.RLock()
	method, ok := o.intercepted[name]

	if !ok {
		method, ok = o.methods[name]
	}
	o.mu.RUnlock()

	if ok {
		return method.Call(args...)
	}

	return o.MethodMissing(name, args...)
}

func (o *Object) String() string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.describe()
}

// Undefine removes the Object's own method name.
func (o *Object) Undefine(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.frozen {
		return fmt.Errorf("%w: cannot undefine %s on %s", ErrFrozen, name, o.describe())
	}

	delete(o.methods, name)

	return nil
}

// describe must be called with o.mu held.
func (o *Object) describe() string {
	if o.name == "" {
		return "#<Object>"
	}

	return "#<Object " + o.name + ">"
}

// Option configures New.
type Option func(*Object)

// RespondsToFunc overrides an Object's RespondsTo.
type RespondsToFunc func(self *Object, name string) bool

// Returns is a method body that ignores its arguments and returns value.
func Returns(value any) Func {
	return func(*Object, ...any) (any, error) {
		return value, nil
	}
}

// WithMethod defines name as one of the new Object's own methods.
func WithMethod(name string, fn Func) Option {
	return func(o *Object) {
		o.methods[name] = boundMethod{self: o, fn: fn}
	}
}

// WithMethodMissing sets the hook for names the Object has no method for.
func WithMethodMissing(hook MissingFunc) Option {
	return func(o *Object) {
		o.missing = hook
	}
}

// WithName names the Object in its String form and in error messages.
func WithName(name string) Option {
	return func(o *Object) {
		o.name = name
	}
}

// WithRespondsTo overrides the Object's RespondsTo.
func WithRespondsTo(hook RespondsToFunc) Option {
	return func(o *Object) {
		o.respondsTo = hook
	}
}

// boundMethod is a Func bound to its receiver.
type boundMethod struct {
	self *Object
	fn   Func
}

func (m boundMethod) Call(args ...any) (any, error) {
	return m.fn(m.self, args...)
}

// Compile-time check that Object satisfies the injection capability set.
var _ core.Subject = (*Object)(nil)
