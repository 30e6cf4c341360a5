//go:build mutation

package dev

import (
	"testing"

	"github.com/gtramontina/ooze"
)

// TestMutation requires every mutant of the injection core, the object
// model, and the matchers to be killed by the unit tests.
func TestMutation(t *testing.T) {
	ooze.Release(
		t,
		ooze.WithTestCommand("go test -buildvcs=false -timeout=60s ./..."),
		ooze.Parallel(),
		ooze.IgnoreSourceFiles("^dev/.*|^_.*|.*_string.go|.*_test.go"),
		ooze.WithMinimumThreshold(0.90),
		ooze.WithRepositoryRoot(".."),
		ooze.ForceColors(),
	)
}
