// Package testutil provides utilities for testing setup-vals in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// RunnerEnv holds the paths of an isolated runner environment.
type RunnerEnv struct {
	Temp       string
	ToolCache  string
	OutputFile string
	PathFile   string
}

// SetupRunnerEnv points every runner-owned location at a fresh temp
// directory so tests never touch a real tool cache or job files. It
// describes a Linux X64 runner; tests override RUNNER_OS and RUNNER_ARCH
// with t.Setenv as needed.
//
// The cleanup function is automatically handled by t.TempDir() and
// t.Setenv(), so callers don't need to manually clean up.
func SetupRunnerEnv(t *testing.T) RunnerEnv {
	t.Helper()

	tmpDir := t.TempDir()

	env := RunnerEnv{
		Temp:       filepath.Join(tmpDir, "temp"),
		ToolCache:  filepath.Join(tmpDir, "tool-cache"),
		OutputFile: filepath.Join(tmpDir, "github_output"),
		PathFile:   filepath.Join(tmpDir, "github_path"),
	}

	for _, dir := range []string{env.Temp, env.ToolCache} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}
	for _, file := range []string{env.OutputFile, env.PathFile} {
		if err := os.WriteFile(file, nil, 0o600); err != nil {
			t.Fatalf("failed to create test file %s: %v", file, err)
		}
	}

	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("RUNNER_OS", "Linux")
	t.Setenv("RUNNER_ARCH", "X64")
	t.Setenv("RUNNER_DEBUG", "")
	t.Setenv("RUNNER_TEMP", env.Temp)
	t.Setenv("RUNNER_TOOL_CACHE", env.ToolCache)
	t.Setenv("GITHUB_OUTPUT", env.OutputFile)
	t.Setenv("GITHUB_PATH", env.PathFile)
	t.Setenv("GITHUB_SERVER_URL", "")
	t.Setenv("INPUT_VERSION", "")

	// Restored on cleanup; the code under test prepends to it
	t.Setenv("PATH", os.Getenv("PATH"))

	return env
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
