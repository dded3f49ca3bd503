// Package sandbox provides sandbox lifecycle management for forage-runtime.
//
// A Runtime owns the lifecycle of one sandbox process for one workspace.
// It drives a runtime.Manager, publishes lifecycle events on an event bus,
// and restarts the sandbox when hot reload sees source changes.
//
//	rt, err := sandbox.New(config.Resolve(in), nil)
//	if err != nil {
//	    return err
//	}
//	defer rt.Close(ctx)
//
//	stop := rt.StreamEvents(func(ev events.SandboxEvent) {
//	    fmt.Println(ev)
//	})
//	defer stop()
//
//	if err := rt.Start(ctx); err != nil {
//	    return err
//	}
//	resp, err := rt.Exec(ctx, runtime.ExecRequest{Command: "npm test"})
//
// # States
//
//	idle -> starting -> ready <-> busy
//	ready -> terminating -> idle
//	starting, busy, terminating -> failed
//
// Start is a no-op while starting, ready or busy; Stop is a no-op while
// idle. A failed sandbox accepts Start again.
//
// # Events
//
// Start emits started, Stop emits stopped, Exec emits busy then idle, and
// every failure emits error with the failure message. Handlers run on the
// goroutine performing the operation and must not call lifecycle methods.
//
// # Exec Failures
//
// The exec failure policy decides what a manager error during Exec does.
// With keep-ready (the default) the sandbox returns to ready and the error
// is recorded in LastError. With mark-failed the sandbox moves to failed
// and the caller gets an unavailable error. A non-zero exit code is never
// a failure.
//
// # Hot Reload
//
// When watch is enabled the runtime opens watchers on entering ready. A
// debounced burst of changes force-stops and restarts the sandbox, keeping
// the watchers open in between. A failed reload leaves the sandbox failed
// and closes the watchers.
package sandbox
