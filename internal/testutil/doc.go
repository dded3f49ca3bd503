// Package testutil provides test fixtures and utilities.
//
// # Test Environment
//
// NewTestEnv creates a workspace root under t.TempDir() and a mock process
// manager:
//
//	env := testutil.NewTestEnv(t)
//	rt, err := sandbox.New(env.Options(env.Input()), env.Manager)
//
// WatchInput turns hot reload on with the given debounce; WriteFile creates
// files relative to the root.
//
// # Fixtures
//
// Config file fixtures are embedded using go:embed:
//
//	fixtures/forage-runtime.toml
//	fixtures/forage-runtime.yaml
//	fixtures/invalid.toml
//
// LoadInputFixture decodes one into a config.Input; WriteFixture copies one
// into the workspace root so config.FindFile can discover it.
package testutil
