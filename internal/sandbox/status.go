package sandbox

import (
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/config"
)

// State is a lifecycle state of the sandbox
type State string

const (
	StateIdle        State = "idle"
	StateStarting    State = "starting"
	StateReady       State = "ready"
	StateBusy        State = "busy"
	StateTerminating State = "terminating"
	StateFailed      State = "failed"
)

// States lists every lifecycle state
var States = []State{StateIdle, StateStarting, StateReady, StateBusy, StateTerminating, StateFailed}

// ProcessInfo holds the live process fields of a RuntimeStatus
type ProcessInfo struct {
	PID       int    `json:"pid,omitempty"`
	LastError string `json:"lastError,omitempty"`
	RSSBytes  uint64 `json:"rssBytes,omitempty"`
}

// RuntimeStatus is a snapshot of the sandbox. Values returned by Status are
// copies; mutating them has no effect on the runtime.
type RuntimeStatus struct {
	State     State       `json:"state"`
	Command   string      `json:"command"`
	Mode      config.Mode `json:"mode"`
	RootDir   string      `json:"rootDir"`
	ReadyAt   time.Time   `json:"readyAt,omitzero"`
	StoppedAt time.Time   `json:"stoppedAt,omitzero"`
	Runtime   ProcessInfo `json:"runtime"`

	// Version increases with every change to the status
	Version uint64 `json:"version"`
}
