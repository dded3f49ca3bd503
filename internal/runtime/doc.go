// Package runtime provides the process manager behind a sandbox.
//
// The orchestrator in internal/sandbox never spawns processes itself; it
// drives a Manager:
//   - Start, Stop: launch and terminate the sandbox process
//   - Exec: run one command in the sandbox and capture its output
//   - Status: report PID, liveness and resident memory
//
// # Local Manager
//
// LocalManager runs the configured command as a host process group in the
// workspace root. The process receives a filtered host environment, the
// configured env, and three runtime variables:
//
//	FORAGE_RUNTIME_MODE       memory or persist
//	FORAGE_RUNTIME_STATE_DIR  where the sandbox may keep state
//	FORAGE_RUNTIME_MOUNTS     comma list of src:dst[:ro]
//
// In persist mode the state directory is <root>/.forage-runtime/state and
// survives stops. In memory mode it is a temporary directory removed on
// Stop.
//
// Stop sends SIGTERM to the group and SIGKILL after GracePeriod. A forced
// stop kills at once.
//
// # Mock Manager
//
// For testing, use NewMockManager() to create a mock implementation that
// can be configured with exec responses, injected errors and blocking
// hooks, and used to verify the calls the orchestrator made.
package runtime
