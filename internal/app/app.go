// Package app provides the application context for forage-runtime.
// It allows dependency injection for testing.
package app

import (
	"context"
	"os"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/audit"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/metrics"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/sandbox"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/server"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/watch"
)

// App holds the application dependencies
type App struct {
	// Runtime is the lifecycle orchestrator
	Runtime *sandbox.Runtime

	// Metrics observes the runtime
	Metrics *metrics.Collector

	// Journal records events to disk; nil unless enabled
	Journal *audit.Journal

	manager        runtime.Manager
	journal        bool
	watcherFactory watch.Factory
	observers      []sandbox.Observer
	unsubscribe    []func()
}

// Option is a function that configures the App
type Option func(*App)

// WithManager sets a custom process manager
func WithManager(m runtime.Manager) Option {
	return func(a *App) {
		a.manager = m
	}
}

// WithJournal enables the event journal regardless of mode
func WithJournal(enabled bool) Option {
	return func(a *App) {
		a.journal = enabled
	}
}

// WithWatcherFactory sets a custom watcher factory for hot reload
func WithWatcherFactory(f watch.Factory) Option {
	return func(a *App) {
		a.watcherFactory = f
	}
}

// WithObserver adds a lifecycle observer alongside the metrics collector
func WithObserver(o sandbox.Observer) Option {
	return func(a *App) {
		a.observers = append(a.observers, o)
	}
}

// New builds a runtime from resolved options and wires metrics and, in
// persist mode or when requested, the event journal.
func New(opts config.RuntimeOptions, options ...Option) (*App, error) {
	a := &App{
		Metrics: metrics.NewCollector(),
	}

	for _, opt := range options {
		opt(a)
	}

	sandboxOpts := []sandbox.Option{sandbox.WithObserver(a.Metrics)}
	for _, o := range a.observers {
		sandboxOpts = append(sandboxOpts, sandbox.WithObserver(o))
	}
	if a.watcherFactory != nil {
		sandboxOpts = append(sandboxOpts, sandbox.WithWatcherFactory(a.watcherFactory))
	}

	rt, err := sandbox.New(opts, a.manager, sandboxOpts...)
	if err != nil {
		return nil, err
	}
	a.Runtime = rt

	a.unsubscribe = append(a.unsubscribe, rt.StreamEvents(a.Metrics.Handler()))

	if a.journal || opts.Mode == config.ModePersist {
		a.Journal = audit.NewJournal(rt.Options().RootDir)
		a.unsubscribe = append(a.unsubscribe, rt.StreamEvents(a.Journal.Handler()))
		logging.Debug("event journal enabled", "path", a.Journal.Path())
	}

	return a, nil
}

// StatusServer creates a status server for the app's runtime
func (a *App) StatusServer(addr string) *server.Server {
	return server.New(&server.Config{
		ListenAddr: addr,
		Source:     a.Runtime,
		Metrics:    a.Metrics.HTTPHandler(),
		Logger:     logging.With("component", "server"),
	})
}

// Close stops the runtime and detaches the app's subscribers
func (a *App) Close(ctx context.Context) error {
	err := a.Runtime.Close(ctx)
	for _, unsub := range a.unsubscribe {
		unsub()
	}
	return err
}

// LoadInput reads the workspace config file in root, if any, and overlays
// overrides on top of it. The returned input's RootDir is root.
func LoadInput(root string, overrides config.Input) (config.Input, error) {
	var in config.Input

	if info, err := os.Stat(root); err == nil && info.IsDir() {
		if path := config.FindFile(root); path != "" {
			loaded, err := config.LoadFile(path)
			if err != nil {
				return config.Input{}, errors.ConfigError("invalid config file", err)
			}
			logging.Debug("loaded config file", "path", path)
			in = loaded
		}
	}

	in = in.Merge(overrides)
	in.RootDir = root
	return in, nil
}
