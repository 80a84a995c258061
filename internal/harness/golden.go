package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders what a golden file pins: one comment line per
// diagnostic followed by the emitted WGSL. The result stays valid WGSL.
func Snapshot(r *Result) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// status: %s\n", r.Status)
	for _, d := range r.Diagnostics {
		fmt.Fprintf(&buf, "// %s\n", d)
	}
	buf.WriteString(r.WGSL)
	return buf.Bytes()
}

// goldenName is the scenario file's base name without extension, or the
// scenario name when it was not loaded from a file.
func goldenName(s *Scenario) string {
	if s.Path == "" {
		return s.Name
	}
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func goldenDir(s *Scenario) string {
	if s.Path == "" {
		return filepath.Join("testdata", "golden")
	}
	return filepath.Join(filepath.Dir(s.Path), "golden")
}

// GoldenPath returns the golden file of a scenario:
// golden/<file>.golden next to the scenario file.
func GoldenPath(s *Scenario) string {
	return filepath.Join(goldenDir(s), goldenName(s)+".golden")
}

// UpdateGolden writes the result's snapshot as the scenario's golden file.
func UpdateGolden(s *Scenario, r *Result) error {
	path := GoldenPath(s)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, Snapshot(r), 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the result matches the golden file.
// A missing golden file is an error wrapping os.ErrNotExist.
func CompareGolden(s *Scenario, r *Result) (bool, error) {
	want, err := os.ReadFile(GoldenPath(s))
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(want, Snapshot(r)), nil
}

// RunWithGolden executes a scenario, fails t on any failed assertion and
// compares the snapshot against the golden file.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		t.Fatalf("run %s: %v", scenario.Name, err)
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(goldenDir(scenario)),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, goldenName(scenario), Snapshot(result))
	return result
}
