package sandbox

import (
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/watch"
)

// StopOptions controls Stop
type StopOptions struct {
	// Force kills the sandbox process without a grace period
	Force bool
}

// Observer receives lifecycle notifications beyond the event stream.
// Methods are called synchronously from the operation that caused them and
// must not call back into the Runtime's lifecycle operations.
type Observer interface {
	StateChanged(from, to State)
	ExecFinished(resp *runtime.ExecResponse, duration time.Duration, err error)
	Reloaded(err error)
}

// Option configures a Runtime
type Option func(*Runtime)

// WithWatcherFactory replaces the fsnotify watcher used for hot reload
func WithWatcherFactory(f watch.Factory) Option {
	return func(r *Runtime) {
		r.watcherFactory = f
	}
}

// WithObserver adds an observer
func WithObserver(o Observer) Option {
	return func(r *Runtime) {
		r.observers = append(r.observers, o)
	}
}

// WithClock replaces time.Now for status timestamps and events
func WithClock(now func() time.Time) Option {
	return func(r *Runtime) {
		r.now = now
	}
}
