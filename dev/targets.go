//go:build targ

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/toejough/go-reorder"
	"github.com/toejough/targ"
	"github.com/toejough/targ/sh"
)

// Check fixes what can be fixed, then runs every gate.
func Check() error {
	fmt.Println("Checking...")

	return targ.Deps(Tidy, ReorderDecls, CheckCoverage, Lint)
}

// CheckForFail runs every gate without changing any file, fastest first.
func CheckForFail() error {
	fmt.Println("Checking for failures...")

	return targ.Deps(ReorderDeclsCheck, Lint, TestForFail, CheckCoverage)
}

// CheckCoverage fails if any function's statement coverage is below minimumCoverage.
func CheckCoverage() error {
	fmt.Println("Checking coverage...")

	if err := targ.Deps(Test); err != nil {
		return err
	}

	report, err := output("go", "tool", "cover", "-func="+coverageFile)
	if err != nil {
		return err
	}

	var uncovered []string

	for line := range strings.SplitSeq(report, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] == "total:" {
			continue
		}

		percent, err := strconv.ParseFloat(strings.TrimSuffix(fields[len(fields)-1], "%"), 64)
		if err != nil {
			return fmt.Errorf("unreadable coverage line %q: %w", line, err)
		}

		if percent < minimumCoverage {
			uncovered = append(uncovered, line)
		}
	}

	if len(uncovered) > 0 {
		return fmt.Errorf("%d function(s) below %.0f%% coverage:\n  %s",
			len(uncovered), minimumCoverage, strings.Join(uncovered, "\n  "))
	}

	return nil
}

// Lint runs golangci-lint with the repository's default configuration.
func Lint() error {
	fmt.Println("Linting...")
	return sh.Run("golangci-lint", "run", "./...")
}

// Mutate requires the unit tests to kill the mutants ooze generates.
func Mutate() error {
	fmt.Println("Running mutation tests...")

	if err := targ.Deps(TestForFail); err != nil {
		return err
	}

	return sh.Run("go", "test", "-timeout=6000s", "-tags=mutation", "-ooze.v", "./dev/...", "-run=TestMutation")
}

// ReorderDecls rewrites Go files whose declarations are out of order.
func ReorderDecls() error {
	fmt.Println("Reordering declarations...")

	return eachOutOfOrder(func(path, _, reordered string) error {
		fmt.Printf("  reordered %s\n", path)

		return os.WriteFile(path, []byte(reordered), 0o600)
	})
}

// ReorderDeclsCheck prints a diff for every Go file whose declarations are out
// of order, and fails if there are any.
func ReorderDeclsCheck() error {
	fmt.Println("Checking declaration order...")

	var unordered []string

	err := eachOutOfOrder(func(path, current, reordered string) error {
		unordered = append(unordered, path)

		fmt.Println(textdiff.Unified(path+" (current)", path+" (reordered)", current, reordered))

		return nil
	})
	if err != nil {
		return err
	}

	if len(unordered) > 0 {
		return fmt.Errorf("declarations out of order in %s; run 'targ reorder-decls'", strings.Join(unordered, ", "))
	}

	return nil
}

// Test runs the unit tests with the race detector and writes coverage.out.
func Test() error {
	fmt.Println("Running unit tests...")

	return sh.Run("go", "test", "-timeout=2m", "-race", "-count=1",
		"-coverprofile="+coverageFile, "-coverpkg=./...", "./...")
}

// TestForFail runs the unit tests, stopping at the first failure.
func TestForFail() error {
	fmt.Println("Running unit tests for pass/fail...")
	return sh.Run("go", "test", "-timeout=30s", "-failfast", "./...")
}

// Tidy tidies go.mod.
func Tidy() error {
	fmt.Println("Tidying go.mod...")
	return sh.Run("go", "mod", "tidy")
}

const (
	coverageFile    = "coverage.out"
	minimumCoverage = 80.0
)

// skippedDirs are never walked for source: the reference pack and tool state.
//
//nolint:gochecknoglobals // fixed lookup table
var skippedDirs = []string{"_examples", ".git", "vendor"}

// eachOutOfOrder calls visit for every hand-written Go file go-reorder would change.
func eachOutOfOrder(visit func(path, current, reordered string) error) error {
	return filepath.WalkDir(".", func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if slices.Contains(skippedDirs, entry.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(path) != ".go" {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		if bytes.Contains(content, []byte("DO NOT EDIT")) {
			return nil
		}

		reordered, err := reorder.Source(string(content))
		if err != nil {
			return fmt.Errorf("reordering %s: %w", path, err)
		}

		if reordered == string(content) {
			return nil
		}

		return visit(path, string(content), reordered)
	})
}

func output(command string, args ...string) (string, error) {
	var stdout bytes.Buffer

	cmd := exec.Command(command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", fmt.Errorf("%s exited with %d: %w", command, exitErr.ExitCode(), err)
	}

	return strings.TrimSpace(stdout.String()), err
}
