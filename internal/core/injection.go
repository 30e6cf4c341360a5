package core

import (
	"fmt"
	"strings"
	"weak"
)

// DefaultPrefix is prepended to a method name to form the reserved name the
// captured original is exposed under.
const DefaultPrefix = "__impinject__original_"

// DoubleInjection is a substitute bound to one method name on one subject.
//
// Injections are not safe for concurrent use. Callers sharing a subject
// across goroutines must serialize bind, calls, and reset for a given
// subject and method name themselves.
type DoubleInjection struct {
	subject    func() Subject // resolves a weak pointer; nil once the subject is collected
	describe   string
	name       string
	reserved   string
	mode       Mode
	substitute Method
	responder  Responder
	captured   bool // the original lives on the subject under the reserved name
	state      State
	resolving  bool
}

// Bind installs substitute as name on subject and returns the injection
// that owns it.
//
// If name is already bound on subject by an injection that has not been
// reset, the new mode and substitute fold into that injection, which is
// returned again. An original it already captured is kept, and so is its
// reserved name: options passed to a folding Bind, such as WithPrefix, are
// ignored.
//
// A name that is currently another injection's reserved name cannot be
// bound and fails with ErrNameCollision.
func Bind[T any](
	subject *T,
	name string,
	mode Mode,
	substitute Method,
	opts ...Option,
) (*DoubleInjection, error) {
	options := newOptions(opts)
	name = NormalizeMethodName(name)

	if subject == nil {
		return nil, newInjectionError(PhaseBind, "<nil>", name, ErrUnsupportedTarget)
	}

	describe := describeSubject(subject)

	if name == "" {
		return nil, newInjectionError(PhaseBind, describe, name, ErrInvalidMethodName)
	}

	target, ok := any(subject).(Subject)
	if !ok {
		//nolint:err113 // wraps sentinel with dynamic context
		return nil, newInjectionError(PhaseBind, describe, name,
			fmt.Errorf("%w: %T lacks the injection capability set", ErrUnsupportedTarget, subject))
	}

	if substitute == nil {
		substitute = passThrough(mode)
	}

	if held, ok := target.Intercepted(name); ok {
		if _, isSlot := held.(*originalSlot); isSlot {
			return nil, newInjectionError(PhaseBind, describe, name,
				fmt.Errorf("%w: %s holds another injection's original", ErrNameCollision, name))
		}
	}

	if existing, ok := boundInjection(target, name); ok {
		return existing.fold(target, mode, substitute)
	}

	reserved := ReservedName(options.prefix, name)

	if _, ok := target.Method(reserved); ok {
		return nil, newInjectionError(PhaseBind, describe, name,
			fmt.Errorf("%w: %s is a method of the subject", ErrNameCollision, reserved))
	}

	if _, ok := target.Intercepted(reserved); ok {
		return nil, newInjectionError(PhaseBind, describe, name,
			fmt.Errorf("%w: %s is already intercepted", ErrNameCollision, reserved))
	}

	ptr := weak.Make(subject)
	injection := &DoubleInjection{
		subject: func() Subject {
			strong := ptr.Value()
			if strong == nil {
				return nil
			}

			resolved, _ := any(strong).(Subject)

			return resolved
		},
		describe:   describe,
		name:       name,
		reserved:   reserved,
		mode:       mode,
		substitute: substitute,
		responder:  Inspect(target, name),
		state:      StateBound,
	}

	if injection.responder == Implemented && mode == ReplaceWithProxy {
		original, _ := target.Method(name)

		err := injection.capture(target, original)
		if err != nil {
			return nil, newInjectionError(PhaseBind, describe, name, err)
		}
	}

	err := target.Intercept(name, &dispatcher{injection: injection})
	if err != nil {
		if injection.captured {
			_ = target.Release(reserved)
		}

		return nil, newInjectionError(PhaseBind, describe, name,
			fmt.Errorf("%w: %w", ErrUnsupportedTarget, err))
	}

	return injection, nil
}

// Mode returns the injection's current mode.
func (d *DoubleInjection) Mode() Mode {
	return d.mode
}

// Name returns the normalized method name.
func (d *DoubleInjection) Name() string {
	return d.name
}

// Original returns the captured original, if one has been captured and the
// subject is still reachable.
func (d *DoubleInjection) Original() (Method, bool) {
	if !d.captured {
		return nil, false
	}

	target := d.subject()
	if target == nil {
		return nil, false
	}

	return target.Intercepted(d.reserved)
}

// ReservedName returns the name the captured original is exposed under.
func (d *DoubleInjection) ReservedName() string {
	return d.reserved
}

// Reset undoes the injection. The subject answers name exactly as it did
// before Bind, and the reserved name is gone.
//
// Reset fails with ErrAlreadyReset when called a second time, and with
// ErrDetachedSubject when the subject has been garbage collected.
func (d *DoubleInjection) Reset() error {
	if d.state == StateReset {
		return newInjectionError(PhaseReset, d.describe, d.name, ErrAlreadyReset)
	}

	target := d.subject()
	if target == nil {
		return newInjectionError(PhaseReset, d.describe, d.name, ErrDetachedSubject)
	}

	err := target.Release(d.name)
	if err != nil {
		return newInjectionError(PhaseReset, d.describe, d.name,
			fmt.Errorf("%w: %w", ErrUnsupportedTarget, err))
	}

	if d.captured {
		err = target.Release(d.reserved)
		if err != nil {
			return newInjectionError(PhaseReset, d.describe, d.name,
				fmt.Errorf("%w: %w", ErrUnsupportedTarget, err))
		}
	}

	d.captured = false
	d.state = StateReset

	return nil
}

// Responder returns how the subject answered the name when it was first bound.
func (d *DoubleInjection) Responder() Responder {
	return d.responder
}

// State returns where the injection is in its lifecycle.
func (d *DoubleInjection) State() State {
	return d.state
}

// Subject returns the subject, or false if it has been garbage collected.
func (d *DoubleInjection) Subject() (Subject, bool) {
	target := d.subject()

	return target, target != nil
}

func (d *DoubleInjection) String() string {
	return fmt.Sprintf("%s injection of %s on %s (%s)", d.mode, d.name, d.describe, d.state)
}

// call dispatches a call to the bound name.
func (d *DoubleInjection) call(args []any) (any, error) {
	if d.state == StateReset {
		return nil, newInjectionError(PhaseInvoke, d.describe, d.name, ErrAlreadyReset)
	}

	if d.resolving {
		// The subject called name again while producing the original result.
		return d.callOwn(args)
	}

	if d.mode == Replace {
		return d.substitute.Call(args...)
	}

	result, err := d.callOriginal(args)
	if err != nil {
		return nil, err
	}

	return d.substitute.Call(append([]any{result}, args...)...)
}

// callOriginal produces the result the subject would have returned without
// the injection, capturing the original once the subject has materialized it.
func (d *DoubleInjection) callOriginal(args []any) (any, error) {
	target := d.subject()
	if target == nil {
		return nil, newInjectionError(PhaseInvoke, d.describe, d.name, ErrDetachedSubject)
	}

	if d.captured {
		if original, ok := target.Intercepted(d.reserved); ok {
			return original.Call(args...)
		}
	}

	if method, ok := target.Method(d.name); ok {
		err := d.capture(target, method)
		if err != nil {
			return nil, newInjectionError(PhaseInvoke, d.describe, d.name, err)
		}

		return method.Call(args...)
	}

	result, err := d.callMissing(target, args)
	if err != nil {
		return nil, err
	}

	if method, ok := target.Method(d.name); ok {
		err = d.capture(target, method)
		if err != nil {
			return nil, newInjectionError(PhaseInvoke, d.describe, d.name, err)
		}
	}

	return result, nil
}

// callMissing runs the subject's fallback. Calls to the name that the
// fallback makes in the meantime go to the subject's own path.
func (d *DoubleInjection) callMissing(target Subject, args []any) (any, error) {
	d.resolving = true

	defer func() { d.resolving = false }()

	return target.MethodMissing(d.name, args...)
}

// callOwn runs the subject's own path for the name, ignoring the injection.
func (d *DoubleInjection) callOwn(args []any) (any, error) {
	target := d.subject()
	if target == nil {
		return nil, newInjectionError(PhaseInvoke, d.describe, d.name, ErrDetachedSubject)
	}

	if method, ok := target.Method(d.name); ok {
		return method.Call(args...)
	}

	return target.MethodMissing(d.name, args...)
}

func (d *DoubleInjection) capture(target Subject, original Method) error {
	err := target.Intercept(d.reserved, &originalSlot{original: original})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedTarget, err)
	}

	d.captured = true
	d.state = StateCaptured

	return nil
}

func (d *DoubleInjection) fold(target Subject, mode Mode, substitute Method) (*DoubleInjection, error) {
	switch {
	case mode == Replace && d.captured:
		err := target.Release(d.reserved)
		if err != nil {
			return nil, newInjectionError(PhaseBind, d.describe, d.name,
				fmt.Errorf("%w: %w", ErrUnsupportedTarget, err))
		}

		d.captured = false
		d.state = StateBound
	case mode == ReplaceWithProxy && !d.captured && d.responder == Implemented:
		if original, ok := target.Method(d.name); ok {
			err := d.capture(target, original)
			if err != nil {
				return nil, newInjectionError(PhaseBind, d.describe, d.name, err)
			}
		}
	}

	d.mode = mode
	d.substitute = substitute

	return d, nil
}

// Mode selects whether an injection forwards to the original.
type Mode int

// Modes.
const (
	// Replace runs only the substitute.
	Replace Mode = iota
	// ReplaceWithProxy runs the original, then hands its result to the substitute.
	ReplaceWithProxy
)

func (m Mode) String() string {
	switch m {
	case Replace:
		return "replace"
	case ReplaceWithProxy:
		return "replace_with_proxy"
	default:
		return "unknown"
	}
}

// Option configures Bind.
type Option func(*options)

// State is the lifecycle state of an injection.
type State int

// States. An injection is bound on creation, may capture its original
// while bound, and is reset at most once.
const (
	StateBound State = iota
	StateCaptured
	StateReset
)

func (s State) String() string {
	switch s {
	case StateBound:
		return "bound"
	case StateCaptured:
		return "original-captured"
	case StateReset:
		return "reset"
	default:
		return "unknown"
	}
}

// NormalizeMethodName returns the canonical form of a method name: surrounding
// whitespace and a leading symbol colon are dropped.
func NormalizeMethodName(name string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), ":"))
}

// ReservedName returns the name a captured original for name is exposed under.
func ReservedName(prefix, name string) string {
	return prefix + name
}

// Returns is a substitute that ignores its arguments and returns value.
func Returns(value any) Method {
	return MethodFunc(func(...any) (any, error) {
		return value, nil
	})
}

// WithPrefix sets the prefix of the reserved name the original is exposed under.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// dispatcher is what the subject's interception layer holds for a bound name.
type dispatcher struct {
	injection *DoubleInjection
}

func (d *dispatcher) Call(args ...any) (any, error) {
	return d.injection.call(args)
}

type options struct {
	prefix string
}

// originalSlot exposes a captured original under the reserved name.
type originalSlot struct {
	original Method
}

func (s *originalSlot) Call(args ...any) (any, error) {
	return s.original.Call(args...)
}

// boundInjection returns the live injection currently bound to name on target.
func boundInjection(target Subject, name string) (*DoubleInjection, bool) {
	method, ok := target.Intercepted(name)
	if !ok {
		return nil, false
	}

	bound, ok := method.(*dispatcher)
	if !ok || bound.injection.state == StateReset {
		return nil, false
	}

	return bound.injection, true
}

func describeSubject(subject any) string {
	if stringer, ok := subject.(fmt.Stringer); ok {
		return stringer.String()
	}

	return fmt.Sprintf("%T(%p)", subject, subject)
}

func newOptions(opts []Option) options {
	resolved := options{prefix: DefaultPrefix}

	for _, opt := range opts {
		opt(&resolved)
	}

	return resolved
}

// passThrough is the substitute used when none is given: replace answers nil,
// proxy answers the original's result.
func passThrough(mode Mode) Method {
	if mode == ReplaceWithProxy {
		return MethodFunc(func(args ...any) (any, error) {
			return args[0], nil
		})
	}

	return Returns(nil)
}
