// Package runtime defines the process manager boundary for forage-runtime.
// The orchestrator drives a Manager; LocalManager runs the sandbox as a
// host process group and MockManager backs tests.
package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/config"
)

// ErrNotRunning is returned by operations that need a live sandbox process
var ErrNotRunning = errors.New("sandbox process is not running")

// ManagerConfig holds the options a Manager is built from
type ManagerConfig struct {
	RootDir string
	Command string
	Mode    config.Mode
	Timeout time.Duration // default exec timeout
	Env     map[string]string
	Mounts  []config.MountPoint
}

// ConfigFromOptions extracts the manager-facing subset of resolved options
func ConfigFromOptions(opts config.RuntimeOptions) ManagerConfig {
	return ManagerConfig{
		RootDir: opts.RootDir,
		Command: opts.Command,
		Mode:    opts.Mode,
		Timeout: opts.Timeout,
		Env:     opts.Env,
		Mounts:  opts.Mounts,
	}
}

// ExecRequest describes one command to run inside the sandbox
type ExecRequest struct {
	ID      string            // assigned by the manager when empty
	Command string            // shell-quoted command line
	Env     map[string]string // added to the sandbox environment
	Stdin   string
	Timeout time.Duration // zero uses ManagerConfig.Timeout
}

// ExecResponse holds the outcome of an ExecRequest. A non-zero ExitCode is
// a normal response, not an error.
type ExecResponse struct {
	ID       string        `json:"id"`
	ExitCode int           `json:"exitCode"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	Duration time.Duration `json:"duration"`
}

// LiveStatus is what the manager knows about the sandbox process right now
type LiveStatus struct {
	PID       int
	Running   bool
	ExitError string // set once the process has exited abnormally
	RSSBytes  uint64
}

// Manager is the interface the orchestrator drives.
// Implementations must be safe for concurrent use; the orchestrator
// serializes Start, Stop and Exec but Status may be called at any time.
type Manager interface {
	// Start launches the sandbox process
	Start(ctx context.Context) error

	// Stop terminates the sandbox process. With force set it is killed
	// without a grace period.
	Stop(ctx context.Context, force bool) error

	// Exec runs a command inside the sandbox
	Exec(ctx context.Context, req ExecRequest) (*ExecResponse, error)

	// Status reports the live process fields
	Status(ctx context.Context) LiveStatus
}
