package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

const (
	DefaultCommand  = "openclaw-runtime"
	DefaultMode     = ModeMemory
	DefaultTimeout  = 5000 * time.Millisecond
	DefaultDebounce = 120 * time.Millisecond
	DefaultWatchDir = "."
)

// Mode selects how sandbox state survives a stop.
type Mode string

const (
	// ModeMemory discards sandbox state when the process stops
	ModeMemory Mode = "memory"

	// ModePersist keeps sandbox state under the workspace root
	ModePersist Mode = "persist"
)

// ExecFailurePolicy decides what an exec error from the process manager
// does to the lifecycle state.
type ExecFailurePolicy string

const (
	// ExecFailureKeepReady returns the sandbox to ready after any exec.
	// Exec errors are reported to the caller only.
	ExecFailureKeepReady ExecFailurePolicy = "keep-ready"

	// ExecFailureMarkFailed moves the sandbox to failed when the process
	// manager returns an exec error. A non-zero exit code is not an error.
	ExecFailureMarkFailed ExecFailurePolicy = "mark-failed"
)

// MountPoint maps a host path into the sandbox.
type MountPoint struct {
	Source      string `json:"source" toml:"source" yaml:"source"`
	Destination string `json:"destination" toml:"destination" yaml:"destination"`
	ReadOnly    bool   `json:"readOnly,omitempty" toml:"readOnly" yaml:"readOnly"`
}

// String renders the mount as src:dst[:ro].
func (m MountPoint) String() string {
	s := m.Source + ":" + m.Destination
	if m.ReadOnly {
		s += ":ro"
	}
	return s
}

// WatchControl holds hot-reload settings.
type WatchControl struct {
	Enabled  bool
	Paths    []string // relative to the sandbox root
	Debounce time.Duration
}

// RuntimeOptions is the fully-resolved sandbox configuration.
type RuntimeOptions struct {
	RootDir     string
	Command     string
	Mode        Mode
	Timeout     time.Duration
	Env         map[string]string
	Mounts      []MountPoint
	Watch       WatchControl
	ExecFailure ExecFailurePolicy
}

// Input is caller-supplied, possibly partial configuration. Zero values
// select defaults.
type Input struct {
	RootDir         string            `toml:"rootDir" yaml:"rootDir"`
	Command         string            `toml:"command" yaml:"command"`
	Mode            Mode              `toml:"mode" yaml:"mode"`
	TimeoutMs       int               `toml:"timeoutMs" yaml:"timeoutMs"`
	Env             map[string]string `toml:"env" yaml:"env"`
	Mounts          []MountPoint      `toml:"mounts" yaml:"mounts"`
	Watch           *bool             `toml:"watch" yaml:"watch"`
	WatchPaths      []string          `toml:"watchPaths" yaml:"watchPaths"`
	WatchDebounceMs int               `toml:"watchDebounceMs" yaml:"watchDebounceMs"`
	ExecFailure     ExecFailurePolicy `toml:"execFailure" yaml:"execFailure"`
}

// Bool returns a pointer to b, for Input.Watch.
func Bool(b bool) *bool {
	return &b
}

// Merge overlays the non-zero fields of override onto in. Env entries are
// merged key by key; slices replace.
func (in Input) Merge(override Input) Input {
	out := in
	if override.RootDir != "" {
		out.RootDir = override.RootDir
	}
	if override.Command != "" {
		out.Command = override.Command
	}
	if override.Mode != "" {
		out.Mode = override.Mode
	}
	if override.TimeoutMs != 0 {
		out.TimeoutMs = override.TimeoutMs
	}
	if len(override.Env) > 0 {
		env := make(map[string]string, len(in.Env)+len(override.Env))
		maps.Copy(env, in.Env)
		maps.Copy(env, override.Env)
		out.Env = env
	}
	if override.Mounts != nil {
		out.Mounts = override.Mounts
	}
	if override.Watch != nil {
		out.Watch = override.Watch
	}
	if override.WatchPaths != nil {
		out.WatchPaths = override.WatchPaths
	}
	if override.WatchDebounceMs != 0 {
		out.WatchDebounceMs = override.WatchDebounceMs
	}
	if override.ExecFailure != "" {
		out.ExecFailure = override.ExecFailure
	}
	return out
}

// Resolve fills every unset field of in with its default. It does not
// validate; see RuntimeOptions.Validate.
func Resolve(in Input) RuntimeOptions {
	opts := RuntimeOptions{
		RootDir:     in.RootDir,
		Command:     strings.TrimSpace(in.Command),
		Mode:        in.Mode,
		Timeout:     DefaultTimeout,
		Env:         make(map[string]string, len(in.Env)),
		Mounts:      make([]MountPoint, 0, len(in.Mounts)),
		ExecFailure: in.ExecFailure,
		Watch: WatchControl{
			Debounce: DefaultDebounce,
		},
	}

	if opts.Command == "" {
		opts.Command = DefaultCommand
	}
	if opts.Mode == "" {
		opts.Mode = DefaultMode
	}
	if in.TimeoutMs != 0 {
		opts.Timeout = time.Duration(in.TimeoutMs) * time.Millisecond
	}
	maps.Copy(opts.Env, in.Env)
	opts.Mounts = append(opts.Mounts, in.Mounts...)

	if in.Watch != nil {
		opts.Watch.Enabled = *in.Watch
	}
	if in.WatchDebounceMs != 0 {
		opts.Watch.Debounce = time.Duration(in.WatchDebounceMs) * time.Millisecond
	}
	opts.Watch.Paths = append([]string(nil), in.WatchPaths...)
	if len(opts.Watch.Paths) == 0 {
		opts.Watch.Paths = []string{DefaultWatchDir}
	}

	if opts.ExecFailure == "" {
		opts.ExecFailure = ExecFailureKeepReady
	}

	return opts
}

// Validate checks that the RuntimeOptions are usable. The root directory
// itself is checked by the workspace package.
func (o *RuntimeOptions) Validate() error {
	if o.RootDir == "" {
		return fmt.Errorf("root directory is required")
	}

	switch o.Mode {
	case ModeMemory, ModePersist:
	default:
		return fmt.Errorf("invalid mode: %s (must be memory or persist)", o.Mode)
	}

	if o.Timeout < 0 {
		return fmt.Errorf("exec timeout must not be negative: %s", o.Timeout)
	}
	if o.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative: %s", o.Watch.Debounce)
	}

	switch o.ExecFailure {
	case ExecFailureKeepReady, ExecFailureMarkFailed:
	default:
		return fmt.Errorf("invalid exec failure policy: %s (must be keep-ready or mark-failed)", o.ExecFailure)
	}

	for i, m := range o.Mounts {
		if m.Source == "" || m.Destination == "" {
			return fmt.Errorf("mount %d: source and destination are required", i)
		}
	}

	return nil
}

// EnvList returns the environment as KEY=VALUE pairs sorted by key.
func (o *RuntimeOptions) EnvList() []string {
	env := make([]string, 0, len(o.Env))
	for k, v := range o.Env {
		env = append(env, k+"="+v)
	}
	slices.Sort(env)
	return env
}
