// Package testutil provides test utilities for sandbox tests
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/runtime"
)

// TestEnv holds the test environment
type TestEnv struct {
	T       *testing.T
	TmpDir  string
	Root    string
	Manager *runtime.MockManager
}

// NewTestEnv creates a workspace root and a mock manager
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}

	root := filepath.Join(tmpDir, "ws")
	for _, dir := range []string{root, filepath.Join(root, "src")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	return &TestEnv{
		T:       t,
		TmpDir:  tmpDir,
		Root:    root,
		Manager: runtime.NewMockManager(),
	}
}

// Input returns caller input rooted at the workspace with hot reload off
func (e *TestEnv) Input() config.Input {
	return config.Input{
		RootDir: e.Root,
		Watch:   config.Bool(false),
	}
}

// WatchInput returns caller input with hot reload on
func (e *TestEnv) WatchInput(debounce time.Duration) config.Input {
	in := e.Input()
	in.Watch = config.Bool(true)
	in.WatchDebounceMs = int(debounce / time.Millisecond)
	return in
}

// Options resolves in
func (e *TestEnv) Options(in config.Input) config.RuntimeOptions {
	return config.Resolve(in)
}

// WriteFile writes content to a path relative to the workspace root
func (e *TestEnv) WriteFile(rel, content string) string {
	e.T.Helper()

	path := filepath.Join(e.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.T.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.T.Fatalf("Failed to write %s: %v", rel, err)
	}
	return path
}

// WriteFixture copies a fixture into the workspace root under its own name
func (e *TestEnv) WriteFixture(name string) string {
	e.T.Helper()

	data, err := LoadFixture(name)
	if err != nil {
		e.T.Fatalf("Failed to load fixture %s: %v", name, err)
	}
	return e.WriteFile(name, string(data))
}

// WaitFor polls cond until it holds or timeout passes
func WaitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
