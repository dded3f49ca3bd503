// Package watch implements hot reload for a sandbox workspace.
//
// A Supervisor opens one Watcher per configured path and funnels every
// change through Notify. Changes to ignored paths (see ShouldIgnore) are
// dropped; any other change restarts a single shared debounce timer. When
// the timer fires, the configured Trigger runs once on its own goroutine,
// no matter how many changes arrived in the burst.
//
// Watchers come from a Factory. NewFSNotifyWatcher, the default, watches a
// directory tree recursively with fsnotify and adds new subdirectories as
// they appear.
//
// Close tears down the timer and every watcher together. It never waits
// for a Trigger that is already running, so a Trigger may call back into
// code that closes the supervisor.
package watch
