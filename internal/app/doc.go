// Package app provides the application context for forage-runtime.
//
// This package wires the lifecycle orchestrator to its supporting
// infrastructure using the functional options pattern, enabling easy
// testing through dependency injection.
//
// # App Context
//
//	type App struct {
//	    Runtime *sandbox.Runtime   // Lifecycle orchestrator
//	    Metrics *metrics.Collector // Observer and event counter
//	    Journal *audit.Journal     // Event journal (persist mode or WithJournal)
//	}
//
// # Creating an App
//
//	in, err := app.LoadInput(root, flagOverrides)
//	a, err := app.New(config.Resolve(in))
//
//	// Testing with custom dependencies
//	a, err := app.New(opts,
//	    app.WithManager(runtime.NewMockManager()),
//	    app.WithWatcherFactory(fakeFactory),
//	)
//
// # Available Options
//
//	WithManager(m)          // Custom process manager
//	WithJournal(enabled)    // Journal events in memory mode too
//	WithWatcherFactory(f)   // Custom file watcher
//	WithObserver(o)         // Extra lifecycle observer
package app
