// Package config resolves runtime options for forage-runtime.
//
// # Resolution
//
// Callers describe a sandbox with a partial Input. Resolve fills in every
// unset field:
//
//	command          "openclaw-runtime"
//	mode             memory
//	exec timeout     5000ms
//	env              empty map, caller entries copied in
//	mounts           empty list
//	watch            disabled, debounce 120ms, paths ["."]
//	exec failure     keep-ready
//
// Resolve is pure. RuntimeOptions.Validate reports unusable values (unknown
// mode or policy, negative durations, incomplete mounts).
//
// # Configuration Files
//
// A workspace may carry forage-runtime.toml or forage-runtime.yaml at its
// root. FindFile locates it and LoadFile decodes it into an Input:
//
//	command = "node server.js"
//	mode = "persist"
//	watch = true
//	watchPaths = ["src"]
//	watchDebounceMs = 200
//
//	[[mounts]]
//	source = "/opt/cache"
//	destination = "/cache"
//	readOnly = true
//
// Input.Merge layers command-line overrides on top of the file.
package config
