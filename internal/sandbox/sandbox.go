package sandbox

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/events"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/watch"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/workspace"
)

// ErrClosed is the cause of errors from a Runtime after Close
var ErrClosed = errors.New(errors.ExitUnavailable, "sandbox runtime is closed")

// Runtime supervises one sandbox process for one workspace.
//
// Start, Stop, Exec, Close and watch-triggered reloads are serialized; at
// most one runs at a time. Status and StreamEvents never wait for them.
type Runtime struct {
	opts   config.RuntimeOptions
	mgr    runtime.Manager
	bus    *events.Bus
	logger *slog.Logger

	supervisor     *watch.Supervisor
	watcherFactory watch.Factory
	observers      []Observer
	now            func() time.Time

	// opMu serializes lifecycle operations
	opMu   sync.Mutex
	closed bool

	// mu guards status
	mu     sync.RWMutex
	status RuntimeStatus

	reloading atomic.Bool
}

// New validates opts and the workspace root and returns an idle Runtime.
// A nil mgr runs the sandbox with a LocalManager.
func New(opts config.RuntimeOptions, mgr runtime.Manager, options ...Option) (*Runtime, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.ConfigError("invalid runtime options", err)
	}

	root, err := workspace.ValidateRoot(opts.RootDir)
	if err != nil {
		return nil, errors.WorkspaceError("validate", err)
	}

	own := opts
	own.RootDir = root
	own.Env = maps.Clone(opts.Env)
	own.Mounts = append([]config.MountPoint(nil), opts.Mounts...)
	own.Watch.Paths = append([]string(nil), opts.Watch.Paths...)

	if mgr == nil {
		mgr = runtime.NewLocalManager(runtime.ConfigFromOptions(own))
	}

	r := &Runtime{
		opts:   own,
		mgr:    mgr,
		bus:    events.NewBus(),
		logger: logging.With("component", "sandbox", "root", root),
		now:    time.Now,
		status: RuntimeStatus{
			State:   StateIdle,
			Command: own.Command,
			Mode:    own.Mode,
			RootDir: root,
		},
	}

	for _, o := range options {
		o(r)
	}

	r.supervisor = watch.NewSupervisor(watch.Config{
		Root:     root,
		Debounce: own.Watch.Debounce,
		Trigger:  r.reload,
		Factory:  r.watcherFactory,
	})

	return r, nil
}

// Options returns a copy of the resolved options
func (r *Runtime) Options() config.RuntimeOptions {
	opts := r.opts
	opts.Env = maps.Clone(r.opts.Env)
	opts.Mounts = append([]config.MountPoint(nil), r.opts.Mounts...)
	opts.Watch.Paths = append([]string(nil), r.opts.Watch.Paths...)
	return opts
}

// State returns the current lifecycle state
func (r *Runtime) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status.State
}

// update applies fn to the status and bumps its version. Observers are told
// about state changes after the lock is released.
func (r *Runtime) update(to State, fn func(s *RuntimeStatus)) {
	r.mu.Lock()
	from := r.status.State
	r.status.State = to
	if fn != nil {
		fn(&r.status)
	}
	r.status.Version++
	r.mu.Unlock()

	if from != to {
		r.logger.Debug("state changed", "from", from, "to", to)
		for _, o := range r.observers {
			o.StateChanged(from, to)
		}
	}
}

func (r *Runtime) emit(kind events.Kind, message string) {
	ev := events.Build(kind, message)
	ev.Time = r.now()
	r.bus.Emit(ev)
}

// fail moves to failed, records err and broadcasts it
func (r *Runtime) fail(err error) {
	r.update(StateFailed, func(s *RuntimeStatus) {
		s.Runtime.LastError = err.Error()
	})
	r.logger.Error("sandbox failed", "error", err)
	r.emit(events.KindError, err.Error())
}

// refresh pulls live process fields from the manager. An idle sandbox
// keeps an empty PID.
func (r *Runtime) refresh(ctx context.Context) {
	live := r.mgr.Status(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status.State == StateIdle {
		return
	}

	info := r.status.Runtime
	info.PID = live.PID
	info.RSSBytes = live.RSSBytes
	if live.ExitError != "" && !live.Running && (r.status.State == StateReady || r.status.State == StateBusy) {
		info.LastError = "process exited: " + live.ExitError
	}
	if info != r.status.Runtime {
		r.status.Runtime = info
		r.status.Version++
	}
}

// Start launches the sandbox process and, when hot reload is enabled,
// starts watching. It is a no-op while starting, ready or busy. A failed
// sandbox may be started again.
func (r *Runtime) Start(ctx context.Context) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()
	return r.start(ctx)
}

func (r *Runtime) start(ctx context.Context) error {
	if r.closed {
		return errors.Unavailable("start", ErrClosed)
	}

	prev := r.State()
	switch prev {
	case StateStarting, StateReady, StateBusy:
		return nil
	}

	// A failed exec or stop can leave the previous process behind.
	if prev == StateFailed {
		if err := r.mgr.Stop(ctx, true); err != nil {
			r.logger.Warn("failed to clear previous sandbox process", "error", err)
		}
	}

	r.update(StateStarting, func(s *RuntimeStatus) {
		s.Runtime.LastError = ""
	})
	r.emit(events.KindStarted, "starting "+r.opts.Command)

	if err := r.mgr.Start(ctx); err != nil {
		r.supervisor.Close()
		r.fail(err)
		return errors.Unavailable("start", err)
	}

	r.refresh(ctx)
	r.update(StateReady, func(s *RuntimeStatus) {
		s.ReadyAt = r.now()
	})

	if r.opts.Watch.Enabled {
		r.supervisor.Activate(r.opts.Watch.Paths)
	}

	r.mu.RLock()
	pid := r.status.Runtime.PID
	r.mu.RUnlock()
	r.logger.Info("sandbox ready", "pid", pid)
	return nil
}

// Exec runs req in the sandbox. The sandbox must be ready; otherwise the
// error matches errors.ErrUnavailable and the manager is not called.
//
// A non-zero exit code is returned in the response, not as an error. What
// an error from the manager does to the state depends on the configured
// exec failure policy.
func (r *Runtime) Exec(ctx context.Context, req runtime.ExecRequest) (*runtime.ExecResponse, error) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if r.closed {
		return nil, errors.Unavailable("exec", ErrClosed)
	}
	if state := r.State(); state != StateReady {
		return nil, errors.NotReady("exec", string(state))
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Timeout <= 0 {
		req.Timeout = r.opts.Timeout
	}

	r.update(StateBusy, nil)
	r.emit(events.KindBusy, "execution started")

	began := r.now()
	resp, err := r.mgr.Exec(ctx, req)
	elapsed := r.now().Sub(began)

	for _, o := range r.observers {
		o.ExecFinished(resp, elapsed, err)
	}

	if err != nil {
		r.logger.Warn("exec failed", "id", req.ID, "error", err)
		if r.opts.ExecFailure == config.ExecFailureMarkFailed {
			r.supervisor.Close()
			r.fail(err)
			return nil, errors.Unavailable("exec", err)
		}
	}

	r.emit(events.KindIdle, "execution complete")
	r.update(StateReady, func(s *RuntimeStatus) {
		if err != nil {
			s.Runtime.LastError = err.Error()
		}
	})

	if err != nil {
		return resp, errors.ProcessFailed("exec", err)
	}
	return resp, nil
}

// Status refreshes the live process fields and returns a snapshot
func (r *Runtime) Status(ctx context.Context) RuntimeStatus {
	r.refresh(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// StreamEvents subscribes handler to lifecycle events and returns a
// function that unsubscribes it. Handlers run synchronously on the
// goroutine performing the operation; they may call Status but must not
// call Start, Stop, Exec or Close.
func (r *Runtime) StreamEvents(handler events.Handler) (unsubscribe func()) {
	return r.bus.Subscribe(handler)
}
