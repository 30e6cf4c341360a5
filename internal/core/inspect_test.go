package core_test

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/impinject/internal/core"
	"github.com/toejough/impinject/object"
)

// TestInspect classifies each subject shape.
func TestInspect(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		subject *object.Object
		want    core.Responder
	}{
		"own method": {
			subject: object.New(object.WithMethod("foobar", object.Returns(nil))),
			want:    core.Implemented,
		},
		"own method with a RespondsTo that denies it": {
			subject: object.New(
				object.WithMethod("foobar", object.Returns(nil)),
				object.WithRespondsTo(func(*object.Object, string) bool { return false }),
			),
			want: core.Implemented,
		},
		"claims to respond": {
			subject: lazySubject(),
			want:    core.Deferred,
		},
		"answers only through method missing": {
			subject: object.New(object.WithMethodMissing(synthesizeFoobar)),
			want:    core.Absent,
		},
		"nothing": {
			subject: object.New(),
			want:    core.Absent,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			g.Expect(core.Inspect(tc.subject, "foobar")).To(Equal(tc.want))
		})
	}
}

// TestInspect_IgnoresInterceptions verifies an intercepted name alone is not a
// materialized method.
func TestInspect_IgnoresInterceptions(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	subject := object.New(object.WithRespondsTo(func(*object.Object, string) bool { return false }))
	g.Expect(subject.Intercept("foobar", core.Returns(nil))).To(Succeed())

	g.Expect(core.Inspect(subject, "foobar")).To(Equal(core.Absent))
}
