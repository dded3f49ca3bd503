// Package system provides host environment helpers for sandboxed processes.
package system

import (
	"os"
	"slices"
	"strings"
)

// passthroughVars are host variables a sandboxed process inherits.
var passthroughVars = []string{
	"PATH",
	"HOME",
	"USER",
	"LOGNAME",
	"SHELL",
	"LANG",
	"TERM",
	"TMPDIR",
	"TZ",
}

// SafeEnviron returns the subset of the host environment that is safe to
// hand to a sandboxed process: the passthrough variables plus LC_* locale
// settings. Credentials and agent sockets are never inherited.
func SafeEnviron() []string {
	return filterEnviron(os.Environ())
}

func filterEnviron(environ []string) []string {
	var out []string
	for _, kv := range environ {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if slices.Contains(passthroughVars, key) || strings.HasPrefix(key, "LC_") {
			out = append(out, kv)
		}
	}
	return out
}

// MergeEnv overlays KEY=VALUE pairs onto base. Later entries win; the
// result keeps first-seen key order.
func MergeEnv(base []string, overlays ...[]string) []string {
	index := make(map[string]int, len(base))
	out := make([]string, 0, len(base))

	add := func(kv string) {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			return
		}
		if i, exists := index[key]; exists {
			out[i] = kv
			return
		}
		index[key] = len(out)
		out = append(out, kv)
	}

	for _, kv := range base {
		add(kv)
	}
	for _, overlay := range overlays {
		for _, kv := range overlay {
			add(kv)
		}
	}
	return out
}
