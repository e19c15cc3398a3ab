package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// TotalKey is the reserved result key holding the wall-clock total for the
// whole run, in seconds.
const TotalKey = "__total__"

// Environment variables consumed by the benchmark tooling.
const (
	// IterationsEnv overrides the number of timed runs per file.
	IterationsEnv = "NUM_ITERATIONS"

	// GitHubOutputEnv points at the GitHub Actions step output file.
	GitHubOutputEnv = "GITHUB_OUTPUT"
)

// Results maps entry paths to average partition durations in seconds.
// The wall-clock total for the run is stored under TotalKey.
type Results map[string]float64

// Total returns the wall-clock total recorded under TotalKey.
func (r Results) Total() float64 {
	return r[TotalKey]
}

// WriteFile persists the results as indented JSON at path, creating parent
// directories as needed.
func (r Results) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// WriteGitHubOutput appends "duration=<int seconds>" to the file named by
// $GITHUB_OUTPUT when running inside GitHub Actions. Outside Actions (the
// variable is unset) it does nothing.
func WriteGitHubOutput(r Results) error {
	path := os.Getenv(GitHubOutputEnv)
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", GitHubOutputEnv, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "duration=%d\n", int(r.Total())); err != nil {
		return fmt.Errorf("writing %s: %w", GitHubOutputEnv, err)
	}
	return nil
}

// IterationsFromEnv returns the iteration count from $NUM_ITERATIONS,
// defaulting to DefaultIterations when unset or unparseable.
func IterationsFromEnv() int {
	raw := os.Getenv(IterationsEnv)
	if raw == "" {
		return DefaultIterations
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return DefaultIterations
	}
	return n
}
