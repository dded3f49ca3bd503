// Package events defines sandbox lifecycle events and the bus that
// delivers them.
//
// Event kinds:
//
//	started  the sandbox entered "starting"
//	stopped  the sandbox entered "terminating"
//	busy     an execution began
//	idle     an execution finished
//	error    a start, stop, reload or execution failed
//
// Subscribers are plain functions:
//
//	unsubscribe := bus.Subscribe(func(ev events.SandboxEvent) {
//	    logging.Info("sandbox event", "kind", ev.Kind, "message", ev.Message)
//	})
//	defer unsubscribe()
package events
