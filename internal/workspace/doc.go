// Package workspace validates sandbox roots and resolves paths inside them.
//
// Every sandbox is rooted at an existing, readable directory. ValidateRoot
// checks this before any process is started and returns the canonical path:
//
//	root, err := workspace.ValidateRoot("/tmp/ws")
//
// Paths supplied relative to the root (watch paths, for example) are
// resolved with ResolvePath, which refuses to leave the root even through
// symlinks or "..":
//
//	dir, err := workspace.ResolvePath(root, "src")
//
// # Private State
//
// Runtime-owned files live under <root>/.forage-runtime:
//
//	.forage-runtime/state         persistent state for the "persist" mode
//	.forage-runtime/events.jsonl  lifecycle event journal
//
// The hot-reload watcher ignores this prefix.
package workspace
